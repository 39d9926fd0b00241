package comware

import (
	"strconv"
	"strings"

	"github.com/nanoncore/cmw-southbound/types"
	"github.com/nanoncore/cmw-southbound/vendors/common"
)

// Ping defaults applied to zero PingOptions fields
const (
	DefaultPingCount   = 5
	DefaultPingSize    = 100
	DefaultPingTimeout = 2 // seconds
)

func pingDefaults(opts types.PingOptions) types.PingOptions {
	if opts.Count <= 0 {
		opts.Count = DefaultPingCount
	}
	if opts.Size <= 0 {
		opts.Size = DefaultPingSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultPingTimeout
	}
	return opts
}

// pingCommand renders "ping [-a SRC] -c N -s SIZE -t MS [-h TTL] [-vpn-instance VRF] DEST".
// Comware takes the probe timeout in milliseconds.
func pingCommand(destination string, opts types.PingOptions) string {
	opts = pingDefaults(opts)
	parts := []string{"ping"}
	if opts.Source != "" {
		parts = append(parts, "-a", opts.Source)
	}
	parts = append(parts,
		"-c", strconv.Itoa(opts.Count),
		"-s", strconv.Itoa(opts.Size),
		"-t", strconv.Itoa(opts.Timeout*1000),
	)
	if opts.TTL > 0 {
		parts = append(parts, "-h", strconv.Itoa(opts.TTL))
	}
	if opts.VRF != "" {
		parts = append(parts, "-vpn-instance", opts.VRF)
	}
	parts = append(parts, destination)
	return strings.Join(parts, " ")
}

func parsePing(output, destination string, opts types.PingOptions) (*types.PingResult, []types.ParseWarning) {
	opts = pingDefaults(opts)
	res := &types.PingResult{Destination: destination, Probes: []types.PingProbe{}}
	var warnings []types.ParseWarning

	if pingUnreachable.MatchString(output) && !pingSent.MatchString(output) {
		res.Sent = opts.Count
		res.PacketLoss = 100
		warnings = append(warnings, types.ParseWarning{Query: QueryPing, Text: strings.TrimSpace(output), Reason: "destination not resolved"})
		return res, warnings
	}

	address := destination
	next := pingFirstSequence(output)
	summary := false
	for _, line := range common.Lines(output) {
		if m := pingTarget.FindStringSubmatch(line); m != nil {
			address = m[1]
			continue
		}
		if m := pingReplyV7.FindStringSubmatch(line); m != nil {
			next = appendReply(res, m, next)
			continue
		}
		if m := pingReplyV5.FindStringSubmatch(line); m != nil {
			next = appendReply(res, m, next)
			continue
		}
		if pingTimeout.MatchString(line) {
			res.Probes = append(res.Probes, types.PingProbe{Sequence: next, Address: address})
			next++
			continue
		}
		if m := pingSent.FindStringSubmatch(line); m != nil {
			res.Sent, _ = strconv.Atoi(m[1])
			summary = true
		}
		if m := pingReceived.FindStringSubmatch(line); m != nil {
			res.Received, _ = strconv.Atoi(m[1])
		}
		if m := pingLoss.FindStringSubmatch(line); m != nil {
			res.PacketLoss, _ = strconv.ParseFloat(m[1], 64)
		}
		if m := pingRoundTrip.FindStringSubmatch(line); m != nil {
			res.RTTMin, _ = strconv.ParseFloat(m[1], 64)
			res.RTTAvg, _ = strconv.ParseFloat(m[2], 64)
			res.RTTMax, _ = strconv.ParseFloat(m[3], 64)
			if m[4] != "" {
				res.RTTStddev, _ = strconv.ParseFloat(m[4], 64)
			}
		}
	}

	if !summary {
		// no statistics block, e.g. output cut short; derive from samples
		res.Sent = len(res.Probes)
		for _, p := range res.Probes {
			if p.Success {
				res.Received++
			}
		}
		res.PacketLoss = 100
		if res.Sent > 0 {
			res.PacketLoss = float64(res.Sent-res.Received) * 100 / float64(res.Sent)
		}
		warnings = append(warnings, types.ParseWarning{Query: QueryPing, Reason: "ping statistics not found"})
	}
	return res, warnings
}

func appendReply(res *types.PingResult, m []string, next int) int {
	seq, err := strconv.Atoi(m[2])
	if err != nil {
		seq = next
	}
	rtt, _ := strconv.ParseFloat(m[3], 64)
	res.Probes = append(res.Probes, types.PingProbe{Sequence: seq, Address: m[1], Success: true, RTT: rtt})
	return seq + 1
}
