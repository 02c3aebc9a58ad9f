package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"fitness-directory/backend/internal/config"
	"fitness-directory/backend/internal/domain/owner"
	"fitness-directory/backend/internal/firebase"
	"fitness-directory/backend/internal/middleware"
)

func main() {
	uid := flag.String("uid", "", "target firebase uid")
	kind := flag.String("kind", "", "owner kind: gym, personal_trainer or student")
	admin := flag.Bool("admin", false, "grant admin instead of an owner kind")
	flag.Parse()
	if *uid == "" {
		log.Fatal("uid is required: -uid=xxxxx")
	}

	claims := map[string]interface{}{}
	switch {
	case *admin:
		claims["admin"] = true
		claims[middleware.RoleClaim] = "admin"
	default:
		k, err := owner.ParseKind(*kind)
		if err != nil {
			log.Fatalf("-kind: %v", err)
		}
		claims[middleware.RoleClaim] = k.String()
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, config.Load())
	if err != nil {
		log.Fatalf("firebase.NewApp: %v", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatalf("app.Auth: %v", err)
	}

	if err := authClient.SetCustomUserClaims(ctx, *uid, claims); err != nil {
		log.Fatalf("SetCustomUserClaims: %v", err)
	}

	fmt.Printf("ok: %s claims set for %s\n", claims[middleware.RoleClaim], *uid)
}
