//go:build ignore

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/config"
	"github.com/fenilmodi00/ipo-dashboard/database"
	"github.com/fenilmodi00/ipo-dashboard/services"
)

func main() {
	fmt.Printf("🏥 IPO Dashboard Health Check - %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Println(strings.Repeat("=", 50))

	healthScore := 0
	totalTests := 4
	cfg := config.LoadConfig()

	// Test 1: Market clock
	fmt.Print("🕙 Market clock: ")
	engine, err := services.NewIPOEngineFromConfig(cfg.Engine.Market)
	if err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Printf("✅ OK (%s, apply %s-%s)\n", engine.Location(), cfg.Engine.Market.ApplyOpen, cfg.Engine.Market.ApplyClose)
		healthScore++
	}

	// Test 2: Database
	fmt.Print("🗄️  Database: ")
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		defer database.Close()
		if missing, err := database.ValidateSchema(context.Background()); err != nil {
			fmt.Printf("❌ FAILED (%v)\n", err)
		} else if len(missing) > 0 {
			fmt.Printf("⚠️  schema missing columns: %s\n", strings.Join(missing, ", "))
		} else {
			fmt.Println("✅ OK")
			healthScore++
		}
	}

	// Test 3: Stored records
	fmt.Print("📊 Stored IPOs: ")
	if database.DB == nil || engine == nil {
		fmt.Println("❌ SKIPPED")
	} else {
		ipoService := services.NewIPOService(database.NewIPOStore(database.DB, nil), engine)
		if ipos, err := ipoService.GetIPOs(context.Background(), "open", time.Now()); err != nil {
			fmt.Printf("❌ FAILED (%v)\n", err)
		} else {
			fmt.Printf("✅ OK (%d open IPOs)\n", len(ipos))
			healthScore++
		}
	}

	// Test 4: Favorites store
	fmt.Print("⭐ Favorites store: ")
	if favorites, err := database.OpenPebbleFavorites(cfg.FavoritesPath); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Println("✅ OK")
		favorites.Close()
		healthScore++
	}

	fmt.Println(strings.Repeat("-", 50))
	healthPercent := float64(healthScore) / float64(totalTests) * 100

	if healthScore == totalTests {
		fmt.Printf("🎉 SYSTEM HEALTHY: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else if healthScore >= totalTests/2 {
		fmt.Printf("⚠️  SYSTEM DEGRADED: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else {
		fmt.Printf("❌ SYSTEM UNHEALTHY: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	}

	fmt.Printf("⏰ Check completed at: %s\n", time.Now().Format("15:04:05"))
}
