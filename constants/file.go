package constants

// AllowedContentTypes holds the upload media types accepted before any
// pipeline stage runs. Everything else is rejected with a client error.
var AllowedContentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/png":       {},
	"image/jpeg":      {},
}

// IsAllowedContentType reports whether ct may enter the pipeline.
func IsAllowedContentType(ct string) bool {
	_, ok := AllowedContentTypes[ct]
	return ok
}

// SourceObjectName is the fixed blob name for a document's original bytes.
const SourceObjectName = "source.pdf"
