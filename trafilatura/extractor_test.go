package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/probdoc"
	"github.com/fwojciec/probdoc/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Extractor implements probdoc.Extractor at compile time.
var _ probdoc.Extractor = (*trafilatura.Extractor)(nil)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title from meta tags", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head>
<title>Check Prime Number</title>
<meta property="og:title" content="Check Prime Number">
<meta name="description" content="Program that checks whether a number is prime.">
</head>
<body>
<nav>Navigation here</nav>
<main>
<h1>Check Prime Number</h1>
<p>The program takes a number and checks whether it is prime by trial division up to its square root.</p>
</main>
<footer>Footer content</footer>
</body>
</html>`

		result, err := trafilatura.NewExtractor().Extract(html)

		require.NoError(t, err)
		assert.Equal(t, "Check Prime Number", result.Title)
		assert.Equal(t, "Program that checks whether a number is prime.", result.Description)
	})

	t.Run("extracts main content with code", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<nav><a href="/">Home</a><a href="/programs">Programs</a></nav>
<article>
<h1>Sum of Digits</h1>
<p>This program computes the sum of the digits of an integer entered by the user.</p>
<pre><code>total = sum(int(d) for d in input())</code></pre>
</article>
<aside>Sidebar content</aside>
<footer>Copyright 2024</footer>
</body>
</html>`

		result, err := trafilatura.NewExtractor().Extract(html)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "sum of the digits")
		assert.Contains(t, result.ContentHTML, "total = sum")
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract("")

		require.Error(t, err)
		assert.Equal(t, probdoc.EINVALID, probdoc.ErrorCode(err))
	})
}
