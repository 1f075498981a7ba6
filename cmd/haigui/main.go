// Package main runs a scripted local game round against the room core:
// it creates a room, joins a guest, exchanges a few messages, and prints
// every room snapshot both clients receive.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/congsh/haigui-soup/internal/bus"
	"github.com/congsh/haigui-soup/internal/id"
	"github.com/congsh/haigui-soup/internal/identity"
	"github.com/congsh/haigui-soup/internal/platform/config"
	"github.com/congsh/haigui-soup/internal/room"
	"github.com/congsh/haigui-soup/internal/room/service"
	"github.com/congsh/haigui-soup/internal/session"
	"github.com/congsh/haigui-soup/internal/storage/bbolt"
	"github.com/congsh/haigui-soup/internal/storage/sqlite"
	"github.com/congsh/haigui-soup/internal/telemetry"
)

type envConfig struct {
	DataDir     string `env:"HAIGUI_DATA_DIR" envDefault:"./data"`
	TelemetryDB string `env:"HAIGUI_TELEMETRY_DB"`
}

func main() {
	var cfg envConfig
	if err := config.ParseEnv(&cfg); err != nil {
		log.Fatalf("parse env: %v", err)
	}
	dataDir := flag.String("data-dir", cfg.DataDir, "directory for the game database")
	telemetryDB := flag.String("telemetry-db", cfg.TelemetryDB, "optional sqlite file for telemetry events")
	flag.Parse()

	ctx := context.Background()

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("create data dir: %v", err)
	}
	store, err := bbolt.Open(filepath.Join(*dataDir, "haigui.db"))
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	var emitter *telemetry.Emitter
	if *telemetryDB != "" {
		telemetryStore, err := sqlite.Open(*telemetryDB)
		if err != nil {
			log.Fatalf("open telemetry store: %v", err)
		}
		defer telemetryStore.Close()
		emitter = telemetry.NewEmitter(telemetryStore)
	}

	eventBus := bus.New()
	svc := service.New(store, eventBus, emitter)

	host, err := identity.NewProvider(store).Load(ctx)
	if err != nil {
		log.Fatalf("load identity: %v", err)
	}
	log.Printf("host identity %s (%s)", host.DisplayName, host.ID)

	created, err := svc.CreateRoom(ctx, room.CreateRoomInput{
		HostID:      host.ID,
		HostName:    host.DisplayName,
		Title:       "深夜的汤",
		Description: "一个人在深夜喝了一碗汤，走出店门就哭了。为什么？",
		Rules: room.Rules{
			Scoring:              room.ScoringNone,
			AllowFlowersAndTrash: true,
		},
	})
	if err != nil {
		log.Fatalf("create room: %v", err)
	}
	log.Printf("room %s created, invite code %s", created.ID, created.InviteCode)

	hostCtrl := session.New(svc, eventBus, store, host.ID, host.DisplayName)
	if err := hostCtrl.Subscribe(ctx, created.ID, logSnapshot(host.DisplayName)); err != nil {
		log.Fatalf("host subscribe: %v", err)
	}

	guestID, err := id.NewID()
	if err != nil {
		log.Fatalf("generate guest id: %v", err)
	}
	guestName, err := identity.GuestName()
	if err != nil {
		log.Fatalf("generate guest name: %v", err)
	}
	guestCtrl := session.New(svc, eventBus, nil, guestID, guestName)
	if _, err := guestCtrl.Join(ctx, created.InviteCode, logSnapshot(guestName)); err != nil {
		log.Fatalf("guest join: %v", err)
	}

	question, err := guestCtrl.AskQuestion(ctx, "死者生前喝过这碗汤吗？", "")
	if err != nil {
		log.Fatalf("ask question: %v", err)
	}
	if _, err := hostCtrl.Answer(ctx, room.VerdictYes, question.ID); err != nil {
		log.Fatalf("answer: %v", err)
	}
	if _, err := hostCtrl.SendInfo(ctx, "提示：注意汤的味道。"); err != nil {
		log.Fatalf("send info: %v", err)
	}
	if _, err := guestCtrl.SendFlower(ctx); err != nil {
		log.Fatalf("send flower: %v", err)
	}
	if err := hostCtrl.EndRoom(ctx); err != nil {
		log.Fatalf("end room: %v", err)
	}

	final, err := svc.GetRoom(ctx, created.ID)
	if err != nil {
		log.Fatalf("get room: %v", err)
	}
	log.Printf("round over: %d members, %d messages, status %s",
		len(final.Users), len(final.Messages), room.StatusLabel(final.Status))
}

func logSnapshot(client string) session.Handler {
	return func(r room.Room) {
		last := "(empty)"
		if len(r.Messages) > 0 {
			msg := r.Messages[len(r.Messages)-1]
			last = msg.SenderName + ": " + msg.Content
		}
		log.Printf("[%s] %s | %d members, %d messages | %s",
			client, room.StatusLabel(r.Status), len(r.Users), len(r.Messages), last)
	}
}
