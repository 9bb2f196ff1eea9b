package commands

const (
	_etc = "/usr/local/etc/com.github.uhppoted"

	DEFAULT_CREDENTIALS = _etc + "/errors/.google/credentials.json"
	DEFAULT_BIND        = "127.0.0.1:8765"
)
