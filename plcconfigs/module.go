package plcconfigs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/softplc/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
