// Package cli parses disappility command-line arguments.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandListen  Command = "listen"
	CommandStop    Command = "stop"
	CommandStatus  Command = "status"
	CommandDevices Command = "devices"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandListen:  {},
	CommandStop:    {},
	CommandStatus:  {},
	CommandDevices: {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	Device     string
	ShowHelp   bool
}

// Parse resolves args into a command; no command means listen.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandListen}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		case "--device":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--device requires a match term")
			}
			parsed.Device = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [--device MATCH] [command]

Commands:
  listen    Capture audio and extract voice commands (default)
  stop      Ask the running listener to stop
  status    Print the running listener state
  devices   List available input devices
  doctor    Run configuration and environment checks
  version   Print version information
  help      Show this help

Flags:
  --config PATH    Config file path (default: $XDG_CONFIG_HOME/disappility/config.yaml)
  --device MATCH   Override audio.input device match for this run
  -h, --help       Show help
  --version        Show version
`, binaryName)
}
