package config

const (
	defaultDataDir            = "~/.local/share/statewatch"
	defaultLogDir             = "~/.local/share/statewatch/logs"
	defaultAPIBind            = "127.0.0.1:7718"
	defaultDefinitionsPath    = "~/.config/statewatch/workflows.toml"
	defaultDefaultStateField  = "workflow_state"
	defaultFallbackStateField = "status"
	defaultSMTPPort           = 587
	defaultRequestTimeout     = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

func defaultBroadRoles() []string {
	return []string{"Employee"}
}

func defaultEmployeeLinkFields() []string {
	return []string{"employee", "assigned_employee", "assigned_to"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Workflow: Workflow{
			DefinitionsPath:    defaultDefinitionsPath,
			DefaultStateField:  defaultDefaultStateField,
			FallbackStateField: defaultFallbackStateField,
		},
		Notifications: Notifications{
			BroadRoles:         defaultBroadRoles(),
			EmployeeLinkFields: defaultEmployeeLinkFields(),
		},
		Email: Email{
			SMTPPort:       defaultSMTPPort,
			RequestTimeout: defaultRequestTimeout,
		},
		InApp: InApp{
			Enabled: true,
		},
		Push: Push{
			RequestTimeout: defaultRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
