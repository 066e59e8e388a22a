package dialog

// systemChannels are the narration channels whose lines carry the speaker in
// the name field but read better folded into the text.
var systemChannels = map[string]bool{
	"0039": true,
	"0839": true,
	"0003": true,
	"0038": true,
	"003C": true,
	"0048": true,
	"001D": true,
	"001C": true,
}

// npcChannels gate first-seen audio playback.
var npcChannels = map[string]bool{
	"003D": true,
	"0044": true,
	"2AB9": true,
}

func IsSystemMessage(code string) bool { return systemChannels[code] }

func IsNPCChannel(code string) bool { return npcChannels[code] }

// namePlaceholder is sent by the capture client when the speaker is unknown.
const namePlaceholder = "..."

// ReshapeSystemMessage folds the speaker name into the text of a system
// message. It runs exactly once per event, before translation.
func ReshapeSystemMessage(ev *DialogueEvent) {
	if !IsSystemMessage(ev.Code) {
		return
	}
	if ev.Name == "" || ev.Name == namePlaceholder {
		return
	}
	ev.Text = ev.Name + ": " + ev.Text
	ev.Name = ""
}
