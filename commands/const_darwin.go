package commands

const (
	_etc = "/usr/local/etc/com.github.tabulate.excel-pipeline"
	_var = "/usr/local/var/com.github.tabulate.excel-pipeline"

	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = _etc + "/.google/credentials.json"
)
