package cfg

type Cfg struct {
	// Application configuration
	ConfigFile string
	OutFile    string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
