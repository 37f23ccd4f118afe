package assets

import "path/filepath"

/** @brief The kinds of assets the manager indexes. */
type ResourceType int

const (
	ResourceTypeNone ResourceType = iota
	/** @brief GLSL source: .vert, .frag, .comp or .glsl */
	ResourceTypeShader
	/** @brief Decodable images: .png, .jpg, .jpeg, .bmp, .tif, .tiff */
	ResourceTypeImage
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeShader:
		return "shader"
	case ResourceTypeImage:
		return "image"
	}
	return "none"
}

/** @brief A loaded asset. */
type Resource struct {
	Name     string
	FullPath string
	Type     ResourceType
	DataSize uint64
	/** @brief string for shaders, *loaders.ImageData for images. */
	Data interface{}
}

// DetermineAssetType maps a file extension to the loader that handles it.
func DetermineAssetType(path string) ResourceType {
	switch filepath.Ext(path) {
	case ".vert", ".frag", ".comp", ".glsl":
		return ResourceTypeShader
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff":
		return ResourceTypeImage
	default:
		return ResourceTypeNone
	}
}
