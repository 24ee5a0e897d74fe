package config

// ConfigBackend persists keys written by "skillmap config set". Values are
// typed by the key table, so the backend only needs strings and ints. The
// default is a flat YAML file under the XDG config directory.
type ConfigBackend interface {
	GetString(key string) (val string, ok bool, err error)
	GetInt(key string) (val int, ok bool, err error)
	SetString(key, val string) error
	SetInt(key string, val int) error
	Delete(key string) error
}
