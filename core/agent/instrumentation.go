package agent

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/voxloop/voxloop-core/core/agent"

var logger = otelslog.NewLogger(scopeName)
