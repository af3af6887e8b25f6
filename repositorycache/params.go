package repositorycache

import "maps"

// Well known connection parameter names.
const (
	ParamName       = "name"
	ParamDatabase   = "database"
	ParamDatasource = "datasource"
	ParamOriginal   = "original"
	ParamEntity     = "entity"

	ParamConfig        = "config"
	ParamClearOnSave   = "clear_on_save"
	ParamClearOnDelete = "clear_on_delete"
	ParamAuto          = "auto"
	ParamCompress      = "compress"
)

// DatasourceCache is the ParamDatasource value of every cache binding.
const DatasourceCache = "cache"

// ConnectionParams are the connection settings of a primary store, and the
// settings of the cache binding derived from it.
type ConnectionParams map[string]any

// Clone returns a shallow copy. A nil receiver clones to an empty map.
func (p ConnectionParams) Clone() ConnectionParams {
	out := make(ConnectionParams, len(p))
	maps.Copy(out, p)
	return out
}

// Merge returns a copy of p with every key of overlay written over it.
// Keys overlay does not name keep their value.
func (p ConnectionParams) Merge(overlay ConnectionParams) ConnectionParams {
	out := p.Clone()
	maps.Copy(out, overlay)
	return out
}

// String returns the value under key when it is a string.
func (p ConnectionParams) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Bool returns the value under key when it is a bool.
func (p ConnectionParams) Bool(key string) bool {
	b, _ := p[key].(bool)
	return b
}
