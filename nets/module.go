package nets

import (
	"github.com/reusee/dscope"
	"github.com/reusee/softplc/logs"
	"github.com/reusee/softplc/plcconfigs"
)

type Module struct {
	dscope.Module
	Logs    logs.Module
	Configs plcconfigs.Module
}
