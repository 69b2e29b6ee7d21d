package mysql

import (
	"encoding/json"
	"time"

	"DeepHabitat/internal/archive"
)

// matchRow 是 match_archive 表的一行，逐回合记录存为 JSON 列。
type matchRow struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement:false"`
	Topic       string    `gorm:"column:topic;size:128;index"`
	Seed        int64     `gorm:"column:seed"`
	Role        string    `gorm:"column:role;size:16"`
	Turns       string    `gorm:"column:turns;type:json"`
	TurnCount   int       `gorm:"column:turn_count"`
	Outcome     string    `gorm:"column:outcome;size:32"`
	FinalDigest string    `gorm:"column:final_digest;size:64"`
	FinishedAt  time.Time `gorm:"column:finished_at"`
}

func (matchRow) TableName() string {
	return "match_archive"
}

func recordToRow(r *archive.MatchRecord) (matchRow, error) {
	turns := r.Turns
	if turns == nil {
		turns = []archive.TurnLog{}
	}
	raw, err := json.Marshal(turns)
	if err != nil {
		return matchRow{}, err
	}
	return matchRow{
		ID:          r.ID,
		Topic:       r.Topic,
		Seed:        r.Seed,
		Role:        r.Role,
		Turns:       string(raw),
		TurnCount:   len(r.Turns),
		Outcome:     r.Outcome,
		FinalDigest: r.FinalDigest,
		FinishedAt:  r.FinishedAt,
	}, nil
}

func rowToRecord(row matchRow) (*archive.MatchRecord, error) {
	var turns []archive.TurnLog
	if row.Turns != "" {
		if err := json.Unmarshal([]byte(row.Turns), &turns); err != nil {
			return nil, err
		}
	}
	return &archive.MatchRecord{
		ID:          row.ID,
		Topic:       row.Topic,
		Seed:        row.Seed,
		Role:        row.Role,
		Turns:       turns,
		Outcome:     row.Outcome,
		FinalDigest: row.FinalDigest,
		FinishedAt:  row.FinishedAt,
	}, nil
}
