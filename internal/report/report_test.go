package report

import (
	"strings"
	"testing"

	"github.com/lungsight/apiserver/types"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name   string
		xrayNo string
		want   string
	}{
		{"plain", "XR-2031", "Report_XR-2031.pdf"},
		{"strips_specials", "XR 20/31!", "Report_XR2031.pdf"},
		{"keeps_underscore", "xr_9", "Report_xr_9.pdf"},
		{"empty", "", "Report_Unknown.pdf"},
		{"all_specials", "??//", "Report_Unknown.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Filename(tt.xrayNo))
		})
	}
}

func TestRenderDefaults(t *testing.T) {
	data, filename, err := Render(types.ReportRequest{})
	require.NoError(t, err)
	require.Equal(t, "Report_Unknown.pdf", filename)
	require.True(t, len(data) > 0)
	require.True(t, strings.HasPrefix(string(data[:5]), "%PDF-"))
}

func TestRenderFullRequest(t *testing.T) {
	req := types.ReportRequest{
		PatientName: "Alice Smith",
		AgeSex:      "34 / F",
		RefBy:       "Dr. Roy",
		Date:        "2026-03-14",
		XrayNo:      "XR-88",
		ExamTitle:   "X-RAY CHEST PA VIEW",
		Findings:    strings.Repeat("bilateral patchy opacities ", 20),
		Conclusion:  "Findings suggestive of pneumonia.",
		Advice:      "Clinical correlation advised.",
	}

	data, filename, err := Render(req)
	require.NoError(t, err)
	require.Equal(t, "Report_XR-88.pdf", filename)
	require.True(t, len(data) > 0)
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"empty", "   ", 10, nil},
		{"single_line", "short text", 20, []string{"short text"}},
		{"wraps_on_words", "aaa bbb ccc", 7, []string{"aaa bbb", "ccc"}},
		{"splits_long_word", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"long_word_mid_line", "aa abcdefgh", 4, []string{"aa", "abcd", "efgh"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, wrapText(tt.text, tt.width))
		})
	}
}
