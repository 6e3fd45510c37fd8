package main

import (
	"cardstorm-backend/cmd/cardstorm/commands"
	"cardstorm-backend/internal/components/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
