package commands

const (
	_etc = "/usr/local/etc/excel-pipeline"
	_var = "/usr/local/var/excel-pipeline"

	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = _etc + "/.google/credentials.json"
)
