package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	apierrors "github.com/diogo/ssechat/internal/errors"
	"github.com/diogo/ssechat/internal/render"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "api error with body",
			err:  apierrors.NewAPIErrorWithBody(500, "https://example.test/api", "stream request failed", "upstream\nexploded"),
			want: []string{"HTTP Status: 500", "Endpoint: https://example.test/api", "upstream", "exploded"},
		},
		{
			name: "network error",
			err:  apierrors.NewNetworkErrorWithEndpoint("request", "https://example.test/api", errors.New("refused")),
			want: []string{"Endpoint: https://example.test/api", "Hint: Check your internet connection"},
		},
		{
			name: "frame too large",
			err:  apierrors.NewFrameTooLargeError(4096, 1024),
			want: []string{"max_frame_bytes"},
		},
		{
			name: "cancelled",
			err:  apierrors.NewCancelledError(context.Canceled),
			want: []string{"Stopped before the reply finished"},
		},
		{
			name: "plain",
			err:  errors.New("something odd"),
			want: []string{"✗ something odd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatError(tt.err)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("FormatError() missing %q in:\n%s", want, got)
				}
			}
		})
	}
}

func TestFormatError_Nil(t *testing.T) {
	if got := FormatError(nil); got != "" {
		t.Errorf("FormatError(nil) = %q", got)
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, nil)
	if buf.Len() != 0 {
		t.Error("nil error should print nothing")
	}

	PrintError(&buf, errors.New("boom"))
	if !strings.Contains(buf.String(), "boom") || !strings.HasSuffix(buf.String(), "\n") {
		t.Errorf("PrintError() wrote %q", buf.String())
	}
}

func TestApplyTheme(t *testing.T) {
	t.Cleanup(func() { ApplyTheme(render.TokyoNightTheme) })

	ApplyTheme(render.DraculaTheme)
	if colorUser != render.DraculaTheme.UserBubble {
		t.Errorf("colorUser = %v", colorUser)
	}
	if colorError != render.DraculaTheme.Error {
		t.Errorf("colorError = %v", colorError)
	}
	if got := errorBubbleStyle.GetBorderTopForeground(); got != render.DraculaTheme.Error {
		t.Errorf("error bubble border = %v", got)
	}
}
