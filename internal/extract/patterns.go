package extract

import "regexp"

// The fixed regex table, one pattern set per domain concept. The token
// vocabulary (bracketed key[value] pairs, `Added notification "..."` quoting)
// is what the game client actually emits; downstream matchers depend on it.
var (
	reTimestamp = regexp.MustCompile(`<(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z)>`)

	reCharacterLogin = regexp.MustCompile(`(?i)Handle\[([^\]]+)\]`)
	reBuildInfo      = regexp.MustCompile(`(?i)BackupNameAttachment=".*?Build\((\d+)\)`)
	reJurisdiction   = regexp.MustCompile(`(?i)Added notification "Entered (.*?) Jurisdiction:? "`)
	reArmistice      = regexp.MustCompile(`(?i)Added notification "(Entering|Leaving) Armistice Zone`)
	reSessionUptime  = regexp.MustCompile(`(?i)Session Uptime: (\d+)s`)

	reLocationID     = regexp.MustCompile(`(?i)Location\[([^\]]+)\]`)
	reObstruction    = regexp.MustCompile(`(?i)Obstructing Entity ([^ \[\]]+)`)
	reAtcLocation    = regexp.MustCompile(`(?i)ATC Location: ([^ \[\]\r\n]+)`)
	reStationDocking = regexp.MustCompile(`(?i)Station_DockingTube_([^ \r\n\[\]]+)`)
	reInventoryReq   = regexp.MustCompile(`(?i)requested inventory for Location\[([^\]]+)\]`)

	reQuantumState = regexp.MustCompile(`(?i)Quantum travel (started|finished|aborted)`)
	reActorDeath   = regexp.MustCompile(`(?i)<Actor Death> Victim: '(.*?)' Killer: '(.*?)' \(Reason: '(.*?)'\)`)
	reDeathSpawn   = regexp.MustCompile(`(?i)(Character killed|OnClientSpawned\] Spawned!)`)
	reMedicalAlert = regexp.MustCompile(`(?i)\[STAMINA\] Player started (suffocating|depressurization)`)

	reVehicleChannel = regexp.MustCompile(`(?i)notification "You have (joined|left)(?: the)? channel '@vehicle_Name([^ ']+)`)
	reVehicleControl = regexp.MustCompile(`(?i)CVehicleMovementBase::(Clear|Set)Driver: .*? control token for '(.*?)'`)

	reNotificationText  = regexp.MustCompile(`(?i)Added notification "([^"]*?)"`)
	reMissionID         = regexp.MustCompile(`(?i)MissionId:\s*\[\s*([^\]]*?)\s*\]`)
	reObjectiveID       = regexp.MustCompile(`(?i)ObjectiveId:\s*\[\s*([^\]]*?)\s*\]`)
	reObjectiveUpserted = regexp.MustCompile(`(?i)ObjectiveUpserted push message for: mission_id ([^ ]+) - objective_id ([^ ]+) - state ([^ ]+)`)
	reObjectiveTechText = regexp.MustCompile(`(?i)Objective updated id=([^,]*?), .*? uiDisplay\[.*?\]\[Text=(.*?)\]`)
	reMissionEnded      = regexp.MustCompile(`(?i)MissionEnded push message for: mission_id ([^ ]+) - mission_state ([^ ]+)`)
	reMarkerCreated     = regexp.MustCompile(`(?i)Creating objective marker: missionId \[([^\]]+)\], .*? contract \[([^\]]+)\], objectiveId \[([^\]]+)\]`)
	reMarkerAdded       = regexp.MustCompile(`(?i)AddToPlayerDataBank>.*?missionId\[\s*([^\]]*?)\s*\], objectiveId\[\s*([^\]]*?)\s*\]`)
	reMarkerRemoved     = regexp.MustCompile(`(?i)RemoveFromPlayerDataBank>.*?missionId\[\s*([^\]]*?)\s*\], objectiveId\[\s*([^\]]*?)\s*\]`)

	reHostCPU        = regexp.MustCompile(`(?i)Host CPU: (.*)`)
	reCPUCount       = regexp.MustCompile(`(?i)Logical CPU Count: (\d+)`)
	reGPUName        = regexp.MustCompile(`(?i)- (.*?) \(vendor`)
	reGPUMemory      = regexp.MustCompile(`(?i)Dedicated video memory: (\d+) MB`)
	rePhysicalMemory = regexp.MustCompile(`(?i)(\d+)MB physical memory installed, (\d+)MB available`)
	reDisplayMode    = regexp.MustCompile(`(?i)Current display mode is ([\dx]+)`)
	reDisplayHz      = regexp.MustCompile(`(?i)Borderless at ([\d.]+)Hz`)
	reJoystick       = regexp.MustCompile(`(?i)- Connected joystick\d+: \s*(.*?)\s*\{`)

	reTraceSession = regexp.MustCompile(`(?i)\[Trace\] @session:\s*'([^']+)'`)
	reTraceShard   = regexp.MustCompile(`(?i)\[Trace\] @host_session:\s*'([^']+)'`)
	reTraceEnv     = regexp.MustCompile(`(?i)\[Trace\] @env_session:\s*'([^']+)'`)
	reRPCEndpoint  = regexp.MustCompile(`(?i)to endpoint ([^ ]+)`)
	reServerConn   = regexp.MustCompile(`(?i)Connection requested to: ([\d.]+)`)
	reJoinPU       = regexp.MustCompile(`(?i)\[Notice\] <Join PU> address\[([\d.]+)\] port\[\d+\] shard\[([^\]]+)\]`)
	reUpdateShard  = regexp.MustCompile(`(?i)\[Notice\] <Update Shard Id> New Shard Id: ([^ .]+)`)
	reAccountID    = regexp.MustCompile(`(?i)AccountID\[(\d+)\]`)
)
