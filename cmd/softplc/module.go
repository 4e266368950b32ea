package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/softplc/debugs"
	"github.com/reusee/softplc/nets"
)

type Module struct {
	dscope.Module
	Nets   nets.Module
	Debugs debugs.Module
}
