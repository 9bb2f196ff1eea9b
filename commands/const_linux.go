package commands

const (
	_etc = "/usr/local/etc/uhppoted"

	DEFAULT_CREDENTIALS = _etc + "/errors/.google/credentials.json"
	DEFAULT_BIND        = "0.0.0.0:8765"
)
