package printer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture redirects Out and Err for the duration of a test.
func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	prevOut, prevErr, prevColor := Out, Err, color.NoColor
	Out, Err, color.NoColor = &out, &errOut, true
	t.Cleanup(func() {
		Out, Err, color.NoColor = prevOut, prevErr, prevColor
	})
	return &out, &errOut
}

func TestError(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		_, errOut := capture(t)
		err := Error("Test Error", "This is a test error", []string{})
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
		assert.Contains(t, errOut.String(), "This is a test error")
	})

	t.Run("single suggestion is printed bare", func(t *testing.T) {
		_, errOut := capture(t)
		err := Error("Test Error", "Explanation", []string{"Try this fix"})
		require.Equal(t, "Test Error", err.Error())
		assert.Contains(t, errOut.String(), "\nTry this fix\n")
		assert.NotContains(t, errOut.String(), "Either:")
	})

	t.Run("multiple suggestions are numbered", func(t *testing.T) {
		_, errOut := capture(t)
		err := Error("Test Error", "Explanation", []string{"First option", "Second option"})
		require.Equal(t, "Test Error", err.Error())
		assert.Contains(t, errOut.String(), "  1. First option")
		assert.Contains(t, errOut.String(), "  2. Second option")
	})
}

func TestErrorWithContext(t *testing.T) {
	_, errOut := capture(t)
	err := ErrorWithContext("Test Error", "Explanation", map[string]string{
		"Product": "p1",
		"Backend": "http://localhost:5000",
	}, nil)
	require.Equal(t, "Test Error", err.Error())

	out := errOut.String()
	backend := strings.Index(out, "Backend:")
	product := strings.Index(out, "Product:")
	require.True(t, backend >= 0 && product >= 0)
	assert.Less(t, backend, product, "context is printed in key order")
}

func TestStreams(t *testing.T) {
	out, errOut := capture(t)

	Success("Added to cart\n")
	Notice("Could not update quantity", "Out of stock")
	Warning("stale\n")

	assert.Equal(t, "✓ Added to cart\n", out.String())
	assert.Contains(t, errOut.String(), "Could not update quantity\n  Out of stock\n")
	assert.Contains(t, errOut.String(), "⚠️  stale")
}

func TestSignInRequired(t *testing.T) {
	_, errOut := capture(t)

	err := SignInRequired(false)
	assert.Equal(t, "sign in required", err.Error())
	assert.Contains(t, errOut.String(), "storefront signin")

	err = SignInRequired(true)
	assert.Equal(t, "seller sign in required", err.Error())
	assert.Contains(t, errOut.String(), "storefront admin signin")
}
