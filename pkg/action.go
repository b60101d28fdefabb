package pkg

type Action string

const (
	ActionReveal  Action = "reveal"
	ActionFlag    Action = "flag"
	ActionRestart Action = "restart"
	ActionExit    Action = "exit"
)

const (
	NotifyLostTitle = "Game Over!"
	NotifyLostText  = "You hit a mine."
	NotifyWonTitle  = "You Won!"
	NotifyWonText   = "Congratulations!"
)
