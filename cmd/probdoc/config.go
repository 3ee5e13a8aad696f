package main

import (
	"net/url"
	"os"

	"github.com/fwojciec/probdoc"
	"github.com/fwojciec/probdoc/prompt"
)

// Options converts the flags into transform options. The language pair is
// resolved whenever one side is given.
func (f TransformFlags) Options() (probdoc.TransformOptions, error) {
	kind, err := probdoc.ParseTemplateKind(f.Template)
	if err != nil {
		return probdoc.TransformOptions{}, err
	}
	policy, err := probdoc.ParsePolicy(f.Policy)
	if err != nil {
		return probdoc.TransformOptions{}, err
	}
	opts := probdoc.TransformOptions{
		Template:  kind,
		UseAI:     f.AI,
		APIKey:    f.APIKey,
		Model:     f.Model,
		Policy:    policy,
		Language:  f.Language,
		Signature: f.Signature,
	}
	if f.From != "" || f.To != "" {
		tr, err := probdoc.NewTranslateOptions(f.From, f.To)
		if err != nil {
			return opts, err
		}
		opts.Translate = tr
	}
	return opts, nil
}

// Checklists returns the section checklists, read from the sections file
// when one is configured.
func (f TransformFlags) Checklists() (probdoc.Checklists, error) {
	if f.Sections == "" {
		return probdoc.DefaultChecklists(), nil
	}
	file, err := os.Open(f.Sections)
	if err != nil {
		return nil, probdoc.WrapError(probdoc.EIO, err, "failed to open sections file %q", f.Sections)
	}
	defer file.Close()
	return prompt.LoadChecklists(file)
}

// siteRoot returns scheme://host of rawURL, used to resolve relative links.
func siteRoot(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
