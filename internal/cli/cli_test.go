package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToListen(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.False(t, parsed.ShowHelp)
	require.Equal(t, CommandListen, parsed.Command)
}

func TestParseCommandWithConfig(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/disappility.yaml", "doctor"})
	require.NoError(t, err)
	require.Equal(t, CommandDoctor, parsed.Command)
	require.Equal(t, "/tmp/disappility.yaml", parsed.ConfigPath)
	require.False(t, parsed.ShowHelp)
}

func TestParseDeviceOverride(t *testing.T) {
	parsed, err := Parse([]string{"--device", "usb"})
	require.NoError(t, err)
	require.Equal(t, CommandListen, parsed.Command)
	require.Equal(t, "usb", parsed.Device)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantErr    string
		wantCmd    Command
		wantHelp   bool
		wantPath   string
		wantDevice string
	}{
		{
			name:     "help short flag",
			args:     []string{"-h"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "help long flag",
			args:     []string{"--help"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:    "version flag",
			args:    []string{"--version"},
			wantCmd: CommandVersion,
		},
		{
			name:    "explicit listen",
			args:    []string{"listen"},
			wantCmd: CommandListen,
		},
		{
			name:       "flags before listen",
			args:       []string{"--config", "/tmp/cfg", "--device", "pipewire", "listen"},
			wantCmd:    CommandListen,
			wantPath:   "/tmp/cfg",
			wantDevice: "pipewire",
		},
		{
			name:    "status command",
			args:    []string{"status"},
			wantCmd: CommandStatus,
		},
		{
			name:    "stop command",
			args:    []string{"stop"},
			wantCmd: CommandStop,
		},
		{
			name:    "devices command",
			args:    []string{"devices"},
			wantCmd: CommandDevices,
		},
		{
			name:    "config after command",
			args:    []string{"status", "--config", "/tmp/cfg"},
			wantErr: "unexpected arguments after command",
		},
		{
			name:    "missing config path",
			args:    []string{"--config"},
			wantErr: "requires a path",
		},
		{
			name:    "missing device term",
			args:    []string{"--device"},
			wantErr: "requires a match term",
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus"},
			wantErr: "unknown flag",
		},
		{
			name:    "unknown command",
			args:    []string{"bogus"},
			wantErr: "unknown command",
		},
		{
			name:     "help command",
			args:     []string{"help"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := Parse(tt.args)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.wantCmd, parsed.Command)
			require.Equal(t, tt.wantHelp, parsed.ShowHelp)
			require.Equal(t, tt.wantPath, parsed.ConfigPath)
			require.Equal(t, tt.wantDevice, parsed.Device)
		})
	}
}

func TestHelpTextMentionsAllCommands(t *testing.T) {
	text := HelpText("disappility")
	for _, cmd := range []string{"listen", "stop", "status", "devices", "doctor", "version", "help"} {
		require.Contains(t, text, cmd)
	}
	require.Contains(t, text, "--config PATH")
	require.Contains(t, text, "--device MATCH")
}
