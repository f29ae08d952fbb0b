package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MimeImage = "image/"
	MimePDF   = "application/pdf"

	DiagramDir = "diagrams"
	TestDir    = "tests"
)

var (
	AllowedDiagramExtensions = []string{"png", "jpg", "jpeg", "gif", "svg", "webp"}
	AllowedTestExtensions    = []string{"pdf"}
)
