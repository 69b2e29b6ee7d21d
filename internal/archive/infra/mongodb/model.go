package mongodb

import (
	"time"

	"DeepHabitat/internal/archive"
)

type turnDoc struct {
	Turn    int    `bson:"turn"`
	Player1 string `bson:"player1"`
	Player2 string `bson:"player2"`
	Digest  string `bson:"digest"`
}

type matchDoc struct {
	ID          int64     `bson:"_id"`
	Topic       string    `bson:"topic"`
	Seed        int64     `bson:"seed"`
	Role        string    `bson:"role"`
	Turns       []turnDoc `bson:"turns"`
	Outcome     string    `bson:"outcome"`
	FinalDigest string    `bson:"final_digest"`
	FinishedAt  time.Time `bson:"finished_at"`
}

func recordToDoc(r *archive.MatchRecord) matchDoc {
	turns := make([]turnDoc, 0, len(r.Turns))
	for _, t := range r.Turns {
		turns = append(turns, turnDoc{Turn: t.Turn, Player1: t.Player1, Player2: t.Player2, Digest: t.Digest})
	}
	return matchDoc{
		ID:          r.ID,
		Topic:       r.Topic,
		Seed:        r.Seed,
		Role:        r.Role,
		Turns:       turns,
		Outcome:     r.Outcome,
		FinalDigest: r.FinalDigest,
		FinishedAt:  r.FinishedAt.UTC(),
	}
}

func docToRecord(d matchDoc) *archive.MatchRecord {
	turns := make([]archive.TurnLog, 0, len(d.Turns))
	for _, t := range d.Turns {
		turns = append(turns, archive.TurnLog{Turn: t.Turn, Player1: t.Player1, Player2: t.Player2, Digest: t.Digest})
	}
	return &archive.MatchRecord{
		ID:          d.ID,
		Topic:       d.Topic,
		Seed:        d.Seed,
		Role:        d.Role,
		Turns:       turns,
		Outcome:     d.Outcome,
		FinalDigest: d.FinalDigest,
		FinishedAt:  d.FinishedAt,
	}
}
