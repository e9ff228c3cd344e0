package validate

const (
	MaxFileSize int64 = 5 * 1024 * 1024

	MaxCustomIDLen int = 255
)

var AllowedExtensions = map[string]bool{
	".xml": true,
}
