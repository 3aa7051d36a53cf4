package config

const (
	defaultCacheFile            = "~/.local/share/bindery/enrichment_cache.json"
	defaultOutputFile           = "~/.local/share/bindery/books.json"
	defaultExportFile           = "~/.local/share/bindery/library_export.csv"
	defaultLogDir               = "~/.local/share/bindery/logs"
	defaultOpenLibraryBaseURL   = "https://openlibrary.org"
	defaultOpenLibraryMaxResult = 5
	defaultOpenLibraryTimeout   = 10
	defaultEnrichmentPauseMS    = 1100
	defaultEnrichmentSaveEvery  = 25
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheFile:  defaultCacheFile,
			OutputFile: defaultOutputFile,
			ExportFile: defaultExportFile,
			LogDir:     defaultLogDir,
		},
		OpenLibrary: OpenLibrary{
			BaseURL:        defaultOpenLibraryBaseURL,
			MaxResults:     defaultOpenLibraryMaxResult,
			TimeoutSeconds: defaultOpenLibraryTimeout,
		},
		Enrichment: Enrichment{
			PauseMilliseconds: defaultEnrichmentPauseMS,
			SaveEvery:         defaultEnrichmentSaveEvery,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			BuildCompleted: true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
