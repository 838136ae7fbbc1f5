package cli

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool   `help:"Show timing telemetry for operations."`
	Config    string `help:"YAML config file (defaults to ./moneymanager.yaml when present)." type:"path" env:"MONEYMANAGER_CONFIG"`
	LogLevel  string `help:"Log level: debug, info, warn or error." name:"log-level"`
}

type Commands struct {
	Globals

	Show     ShowCmd     `cmd:"" help:"Show the budget dashboard for an .xlsx or .csv file."`
	Convert  ConvertCmd  `cmd:"" help:"Convert a budget file to an .xlsx workbook."`
	Session  SessionCmd  `cmd:"" help:"Start an interactive budgeting session."`
	Template TemplateCmd `cmd:"" help:"Write an empty budget template workbook."`
	Doctor   DoctorCmd   `cmd:"" help:"Doctor utilities for debugging budget files."`
}
