package paths

import "strings"

// DefaultExportName is used when a requested export name has no usable file name.
const DefaultExportName = "document-signed.pdf"

const pdfSuffix = ".pdf"

// SanitizeFileName keeps only the final component of raw and makes sure it ends in ".pdf".
// Both '/' and '\' are treated as separators whatever the host platform is.
func SanitizeFileName(raw string) string {
	name := lastComponent(raw)
	if name == "" {
		name = DefaultExportName
	}
	if !strings.HasSuffix(strings.ToLower(name), pdfSuffix) {
		name += pdfSuffix
	}
	return name
}

func lastComponent(raw string) string {
	trimmed := strings.TrimRight(raw, `/\`)
	if i := strings.LastIndexAny(trimmed, `/\`); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "." || trimmed == ".." {
		return ""
	}
	return trimmed
}
