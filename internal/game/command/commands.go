// Package command provides the host command registry, parser, and the
// translation of command lines into game actions.
package command

// Categories for organizing commands.
const (
	CategoryExplore   = "explore"
	CategoryCombat    = "combat"
	CategoryMarket    = "market"
	CategoryInventory = "inventory"
	CategorySystem    = "system"
)

// Handler identifiers mapping commands to actions or local handlers.
const (
	HandlerExplore = "explore"
	HandlerAttack  = "attack"
	HandlerFlee    = "flee"
	HandlerBuy     = "buy"
	HandlerStats   = "stats"
	HandlerWear    = "wear"
	HandlerEquip   = "equip"
	HandlerDrop    = "drop"
	HandlerStatus  = "status"
	HandlerReplay  = "replay"
	HandlerHelp    = "help"
	HandlerQuit    = "quit"
)

// Command defines a host-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text.
	Help string
	// Category groups the command.
	Category string
	// Handler maps to an action or local handler.
	Handler string
}

// BuiltinCommands returns all built-in commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "explore", Aliases: []string{"x"}, Help: "Explore the dungeon (explore [all])", Category: CategoryExplore, Handler: HandlerExplore},

		{Name: "attack", Aliases: []string{"att", "a"}, Help: "Attack the beast (attack [all])", Category: CategoryCombat, Handler: HandlerAttack},
		{Name: "flee", Aliases: []string{"run"}, Help: "Flee the beast (flee [all])", Category: CategoryCombat, Handler: HandlerFlee},

		{Name: "buy", Aliases: []string{"b"}, Help: "Buy potions and items (buy <potions> [item_id[:equip]]...)", Category: CategoryMarket, Handler: HandlerBuy},
		{Name: "stats", Aliases: []string{"upgrade"}, Help: "Spend stat points (stats str=1 luck=2 ...)", Category: CategoryMarket, Handler: HandlerStats},

		{Name: "wear", Aliases: []string{"w"}, Help: "Stage a bag item into its slot (wear <item_id>)", Category: CategoryInventory, Handler: HandlerWear},
		{Name: "equip", Aliases: []string{"eq"}, Help: "Commit staged equipment", Category: CategoryInventory, Handler: HandlerEquip},
		{Name: "drop", Aliases: nil, Help: "Drop items (drop <item_id>...)", Category: CategoryInventory, Handler: HandlerDrop},

		{Name: "status", Aliases: []string{"st"}, Help: "Show adventurer, beast and bag", Category: CategorySystem, Handler: HandlerStatus},
		{Name: "replay", Aliases: nil, Help: "Play back held events of a fallen adventurer", Category: CategorySystem, Handler: HandlerReplay},
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit"}, Help: "Leave the game", Category: CategorySystem, Handler: HandlerQuit},
	}
}

// IsAction reports whether the handler compiles into a game action.
func IsAction(handler string) bool {
	switch handler {
	case HandlerExplore, HandlerAttack, HandlerFlee, HandlerBuy,
		HandlerStats, HandlerEquip, HandlerDrop:
		return true
	default:
		return false
	}
}
