package mwr

import "strconv"

// Dimension names of the brightness temperature cube.
const (
	dimScans    = "n_scans"
	dimFOVs     = "n_fovs"
	dimChannels = "n_channels"
)

// channelHorns maps channel number (1-based) to the feedhorn (1-based)
// that receives it: 50-57 GHz, 89 GHz, 165-183 GHz and 325 GHz.
var channelHorns = [...]int{
	1, 1, 1, 1, 1, 1, 1, 1,
	2,
	3, 3, 3, 3, 3, 3,
	4, 4, 4, 4,
}

// NumChannels is the number of MWR channels.
const NumChannels = len(channelHorns)

// NumHorns is the number of MWR feedhorns.
const NumHorns = 4

// ChannelNames returns the dataset names of the channels, "1" to "19".
func ChannelNames() []string {
	names := make([]string, NumChannels)
	for i := range names {
		names[i] = strconv.Itoa(i + 1)
	}
	return names
}

// channelIndex returns the 0-based index of a channel name.
func channelIndex(name string) (int, bool) {
	ch, err := strconv.Atoi(name)
	if err != nil || ch < 1 || ch > NumChannels || strconv.Itoa(ch) != name {
		return 0, false
	}
	return ch - 1, true
}

// hornIndex returns the 0-based index of a horn name, "1" to "4".
func hornIndex(name string) (int, bool) {
	h, err := strconv.Atoi(name)
	if err != nil || h < 1 || h > NumHorns || strconv.Itoa(h) != name {
		return 0, false
	}
	return h - 1, true
}

// HornOf returns the feedhorn (1-based) of a channel (1-based).
func HornOf(channel int) (int, bool) {
	if channel < 1 || channel > NumChannels {
		return 0, false
	}
	return channelHorns[channel-1], true
}
