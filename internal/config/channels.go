package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ChannelTable maps a 4-character chat channel code to its display color.
// A code missing from the table is an unknown channel and its events are
// dropped at the ingestion boundary.
type ChannelTable map[string]string

// LoadChannelTable reads the channel table from a YAML file. A missing file
// falls back to the built-in defaults; a present but unreadable file is an
// error, since a half-loaded table would silently drop known channels.
func LoadChannelTable(path string) (ChannelTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultChannelTable(), nil
		}
		return nil, fmt.Errorf("read channel table: %w", err)
	}

	table := ChannelTable{}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse channel table: %w", err)
	}
	if len(table) == 0 {
		return DefaultChannelTable(), nil
	}
	return table, nil
}

// DefaultChannelTable covers the common game chat channels.
func DefaultChannelTable() ChannelTable {
	return ChannelTable{
		// player chat
		"000A": "#FFFFFF", // say
		"000B": "#FFA666", // shout
		"000C": "#FFB8DE", // outgoing tell
		"000D": "#FFB8DE", // incoming tell
		"000E": "#66E5FF", // party
		"000F": "#FF9F9F", // alliance
		"001E": "#FFFF66", // yell
		"0018": "#B8FFB8", // free company
		"001B": "#D4FF7D", // novice network

		// system / narration
		"0003": "#CCCCCC",
		"0038": "#CCCCCC",
		"0039": "#CCCCCC",
		"003C": "#CCCCCC",
		"0048": "#CCCCCC",
		"0839": "#CCCCCC",
		"001C": "#B38CFF", // custom emote
		"001D": "#B38CFF", // standard emote

		// NPC dialogue
		"003D": "#ABD647",
		"0044": "#ABD647",
		"2AB9": "#ABD647",
	}
}
