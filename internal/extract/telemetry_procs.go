package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/starwatch-app/starwatch/internal/model"
)

// hardwareProcessor covers the hardware survey block the client writes at
// startup: CPU, GPU, memory, display, and input devices.
type hardwareProcessor struct{}

func (hardwareProcessor) CanProcess(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "cpu") ||
		strings.Contains(lower, "memory") ||
		strings.Contains(lower, "display") ||
		strings.Contains(lower, "joystick") ||
		strings.Contains(lower, "vendor") ||
		strings.Contains(lower, "adapter")
}

func (hardwareProcessor) Process(line string, ts time.Time) []model.Event {
	if m := reHostCPU.FindStringSubmatch(line); m != nil {
		return one(model.CPUInfo{Stamp: model.At(ts), Name: strings.TrimSpace(m[1])})
	}
	if m := reCPUCount.FindStringSubmatch(line); m != nil {
		cores, _ := strconv.Atoi(m[1])
		return one(model.CPUInfo{Stamp: model.At(ts), Cores: cores})
	}
	if m := rePhysicalMemory.FindStringSubmatch(line); m != nil {
		return one(model.MemoryInfo{Stamp: model.At(ts), TotalMB: m[1], AvailableMB: m[2]})
	}
	if m := reGPUName.FindStringSubmatch(line); m != nil {
		name := strings.TrimSpace(m[1])
		if strings.Contains(name, "Microsoft Basic Render Driver") {
			return nil
		}
		return one(model.GPUInfo{Stamp: model.At(ts), Name: name})
	}
	if m := reGPUMemory.FindStringSubmatch(line); m != nil {
		return one(model.GPUInfo{Stamp: model.At(ts), MemoryMB: m[1]})
	}
	if m := reDisplayMode.FindStringSubmatch(line); m != nil {
		return one(model.DisplayInfo{Stamp: model.At(ts), Resolution: m[1]})
	}
	if m := reDisplayHz.FindStringSubmatch(line); m != nil {
		return one(model.DisplayInfo{Stamp: model.At(ts), RefreshRate: m[1]})
	}
	if m := reJoystick.FindStringSubmatch(line); m != nil {
		return one(model.Peripheral{Stamp: model.At(ts), DeviceName: strings.TrimSpace(m[1])})
	}
	return nil
}

// networkProcessor covers server identity: shard announcements, trace
// session markers, RPC endpoints, and connection requests.
type networkProcessor struct{}

func (networkProcessor) CanProcess(line string) bool {
	return strings.Contains(line, "[Trace]") ||
		strings.Contains(line, "endpoint") ||
		strings.Contains(line, "AccountID") ||
		strings.Contains(line, "Connection requested to") ||
		strings.Contains(line, "<Join PU>") ||
		strings.Contains(line, "<Update Shard Id>")
}

func (networkProcessor) Process(line string, ts time.Time) []model.Event {
	if m := reJoinPU.FindStringSubmatch(line); m != nil {
		// The join line carries both the server address and the shard.
		return []model.Event{
			model.ServerConnection{Stamp: model.At(ts), Address: m[1]},
			model.NetworkIdentity{Stamp: model.At(ts), Shard: FriendlyShardName(m[2])},
		}
	}
	if m := reUpdateShard.FindStringSubmatch(line); m != nil {
		return one(model.NetworkIdentity{Stamp: model.At(ts), Shard: FriendlyShardName(m[1])})
	}
	if m := reServerConn.FindStringSubmatch(line); m != nil {
		return one(model.ServerConnection{Stamp: model.At(ts), Address: m[1]})
	}
	if m := reTraceSession.FindStringSubmatch(line); m != nil {
		return one(model.NetworkIdentity{Stamp: model.At(ts), SessionID: m[1]})
	}
	if m := reTraceShard.FindStringSubmatch(line); m != nil {
		return one(model.NetworkIdentity{Stamp: model.At(ts), Shard: FriendlyShardName(m[1])})
	}
	if m := reTraceEnv.FindStringSubmatch(line); m != nil {
		return one(model.NetworkIdentity{Stamp: model.At(ts), EnvID: m[1]})
	}
	if m := reRPCEndpoint.FindStringSubmatch(line); m != nil {
		return one(model.NetworkIdentity{Stamp: model.At(ts), Endpoint: m[1]})
	}
	if m := reAccountID.FindStringSubmatch(line); m != nil {
		return one(model.AccountInfo{Stamp: model.At(ts), AccountID: m[1]})
	}
	return nil
}

// FriendlyShardName renders an internal shard identifier like
// "pub_euw1b_7664231_080" as "EU WEST 80". The local development shard maps
// to "FRONTEND".
func FriendlyShardName(raw string) string {
	if raw == "" || strings.EqualFold(raw, "local_shard") {
		return "FRONTEND"
	}

	parts := strings.Split(raw, "_")
	if len(parts) < 2 {
		return strings.ToUpper(raw)
	}

	var regionPart string
	for _, p := range parts {
		if len(p) >= 3 {
			switch p[:2] {
			case "eu", "us", "ap", "au":
				regionPart = p
			}
		}
		if regionPart != "" {
			break
		}
	}
	if regionPart == "" {
		return strings.ToUpper(raw)
	}

	var region string
	switch regionPart[:2] {
	case "eu":
		region = "EU"
	case "us":
		region = "US"
	case "ap":
		region = "ASIA"
	case "au":
		region = "AUS"
	default:
		region = strings.ToUpper(regionPart[:2])
	}

	var zone string
	if len(regionPart) > 2 {
		switch regionPart[2] {
		case 'w':
			zone = "WEST"
		case 'e':
			zone = "EAST"
		case 'c':
			zone = "CENTRAL"
		}
	}

	shardNum := strings.TrimLeft(parts[len(parts)-1], "0")
	if shardNum == "" {
		shardNum = "0"
	}

	name := region + " " + zone + " " + shardNum
	return strings.TrimSpace(strings.ReplaceAll(name, "  ", " "))
}
