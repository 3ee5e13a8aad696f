//go:build integration

package rod_test

import (
	"testing"

	"github.com/fwojciec/probdoc/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserManager_RecyclesBrowserAfterMaxPages(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager(rod.WithMaxPages(3))
	require.NoError(t, err)
	defer manager.Close()

	firstBrowser, firstGen := manager.Browser()
	require.NotNil(t, firstBrowser)

	manager.IncrementPageCount()
	manager.IncrementPageCount()
	manager.IncrementPageCount()

	secondBrowser, secondGen := manager.Browser()
	require.NotNil(t, secondBrowser)

	assert.NotSame(t, firstBrowser, secondBrowser)
	assert.Equal(t, firstGen+1, secondGen)
}

func TestBrowserManager_DoesNotRecycleBeforeMaxPages(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager(rod.WithMaxPages(5))
	require.NoError(t, err)
	defer manager.Close()

	firstBrowser, firstGen := manager.Browser()
	require.NotNil(t, firstBrowser)

	manager.IncrementPageCount()
	manager.IncrementPageCount()

	sameBrowser, sameGen := manager.Browser()
	assert.Same(t, firstBrowser, sameBrowser)
	assert.Equal(t, firstGen, sameGen)
}

func TestBrowserManager_LauncherPIDClearedOnClose(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	require.NotZero(t, manager.LauncherPID())

	require.NoError(t, manager.Close())
	require.NoError(t, manager.Close())
	assert.Zero(t, manager.LauncherPID())
}
