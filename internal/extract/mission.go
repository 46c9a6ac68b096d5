package extract

import (
	"strings"
	"time"

	"github.com/starwatch-app/starwatch/internal/model"
)

// missionProcessor is the one stateful matcher. The game emits the
// human-readable notification ("Contract Accepted: ...") and the line with
// the machine identifiers (MissionId[...], ObjectiveId[...]) separately, so
// the notification text is buffered until the identifiers arrive. A buffered
// value is consumed at most once and is dropped once consumed or superseded.
type missionProcessor struct {
	pendingText string
	hasPending  bool
}

func (p *missionProcessor) CanProcess(line string) bool {
	return strings.Contains(line, "Added notification") ||
		strings.Contains(line, "<MissionEnded>") ||
		strings.Contains(line, "<ObjectiveUpserted>") ||
		strings.Contains(line, "Creating objective marker") ||
		strings.Contains(line, "MissionId:") ||
		strings.Contains(line, "AddToPlayerDataBank") ||
		strings.Contains(line, "RemoveFromPlayerDataBank") ||
		strings.Contains(line, "UpdateActiveObjective")
}

func (p *missionProcessor) Process(line string, ts time.Time) []model.Event {
	if strings.Contains(line, "<ObjectiveUpserted>") {
		if m := reObjectiveUpserted.FindStringSubmatch(line); m != nil {
			return one(model.ObjectiveUpdate{
				Stamp:       model.At(ts),
				MissionID:   m[1],
				ObjectiveID: m[2],
				State:       normalizeObjectiveState(m[3]),
			})
		}
	}
	if strings.Contains(line, "AddToPlayerDataBank") {
		if m := reMarkerAdded.FindStringSubmatch(line); m != nil {
			return one(model.ObjectiveUpdate{
				Stamp:       model.At(ts),
				MissionID:   strings.TrimSpace(m[1]),
				ObjectiveID: strings.TrimSpace(m[2]),
				State:       model.ObjectiveTracked,
			})
		}
	}
	if strings.Contains(line, "RemoveFromPlayerDataBank") {
		if m := reMarkerRemoved.FindStringSubmatch(line); m != nil {
			return one(model.ObjectiveUpdate{
				Stamp:       model.At(ts),
				MissionID:   strings.TrimSpace(m[1]),
				ObjectiveID: strings.TrimSpace(m[2]),
				State:       model.ObjectiveUntracked,
			})
		}
	}

	if strings.Contains(line, "Added notification") {
		if m := reNotificationText.FindStringSubmatch(line); m != nil {
			p.pendingText = m[1]
			p.hasPending = true
		}
	}

	if strings.Contains(line, "MissionId:") {
		if idm := reMissionID.FindStringSubmatch(line); idm != nil {
			missionID := strings.TrimSpace(idm[1])
			objectiveID := ""
			if om := reObjectiveID.FindStringSubmatch(line); om != nil {
				objectiveID = strings.TrimSpace(om[1])
			}

			text := ""
			if p.hasPending {
				text = p.pendingText
				p.pendingText = ""
				p.hasPending = false
			}
			if text != "" {
				switch {
				case strings.Contains(text, "Accepted:"):
					return one(model.MissionAccepted{
						Stamp:        model.At(ts),
						MissionID:    missionID,
						ContractName: strings.TrimSpace(strings.ReplaceAll(text, "Contract Accepted:", "")),
					})
				case strings.Contains(text, "New Objective:"):
					return one(model.ObjectiveUpdate{
						Stamp:       model.At(ts),
						MissionID:   missionID,
						ObjectiveID: objectiveID,
						State:       model.ObjectiveInProgress,
						Text:        strings.TrimSpace(strings.ReplaceAll(text, "New Objective:", "")),
					})
				case strings.Contains(text, "Objective Complete:"):
					return one(model.ObjectiveUpdate{
						Stamp:       model.At(ts),
						MissionID:   missionID,
						ObjectiveID: objectiveID,
						State:       model.ObjectiveCompleted,
						Text:        strings.TrimSpace(strings.ReplaceAll(text, "Objective Complete:", "")),
					})
				case strings.Contains(text, "Contract Complete:"):
					return one(model.MissionEnded{
						Stamp:     model.At(ts),
						MissionID: missionID,
						RawState:  "MISSION_STATE_SUCCEEDED",
					})
				}
			}
		}
	}

	if strings.Contains(line, "UpdateActiveObjective") {
		if m := reObjectiveTechText.FindStringSubmatch(line); m != nil {
			// No mission id here: the HUD is telling us which objective it is
			// currently showing.
			return one(model.ObjectiveUpdate{
				Stamp:       model.At(ts),
				ObjectiveID: m[1],
				State:       model.ObjectiveInProgress,
				Text:        m[2],
			})
		}
	}

	if strings.Contains(line, "Creating objective marker") {
		if m := reMarkerCreated.FindStringSubmatch(line); m != nil {
			// One line, two facts: the mission exists and its first objective
			// is pending.
			return []model.Event{
				model.ObjectiveUpdate{
					Stamp:       model.At(ts),
					MissionID:   m[1],
					ObjectiveID: m[3],
					State:       model.ObjectivePending,
				},
				model.MissionAccepted{
					Stamp:        model.At(ts),
					MissionID:    m[1],
					ContractName: m[2],
				},
			}
		}
	}

	if strings.Contains(line, "<MissionEnded>") {
		if m := reMissionEnded.FindStringSubmatch(line); m != nil {
			return one(model.MissionEnded{Stamp: model.At(ts), MissionID: m[1], RawState: m[2]})
		}
	}
	return nil
}

// normalizeObjectiveState folds raw upsert state tokens into the objective
// status vocabulary.
func normalizeObjectiveState(raw string) model.ObjectiveStatus {
	s := strings.ToUpper(raw)
	switch {
	case strings.Contains(s, "COMPLETED"), strings.Contains(s, "SUCCEEDED"):
		return model.ObjectiveCompleted
	case strings.Contains(s, "FAILED"):
		return model.ObjectiveFailed
	case strings.Contains(s, "INPROGRESS"):
		return model.ObjectiveInProgress
	default:
		return model.ObjectivePending
	}
}
