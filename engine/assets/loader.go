package assets

// Loader reads one kind of asset from disk. params are loader specific and may be nil.
type Loader interface {
	Load(path string, params interface{}) (*Resource, error)
	Unload(*Resource) error
}
