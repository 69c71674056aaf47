package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/khatmahq/khatma-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/Khatma/data/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	counts := map[string]int{}
	prefixes := []string{"user:", "session:", "journey:", "jmember:", "rlog:", "vc:", "invite:", "user_stats:"}

	err = db.View(func(txn *badger.Txn) error {
		for _, prefix := range prefixes {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(prefix)
			opts.PrefetchValues = false
			it := txn.NewIterator(opts)

			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				key := string(it.Item().Key())
				// Skip secondary index keys stored under the entity prefix
				if strings.Contains(key, "idx:") {
					continue
				}
				counts[prefix]++
			}
			it.Close()
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Inspection failed: %v", err)
	}

	for _, prefix := range prefixes {
		fmt.Printf("%-12s %d\n", prefix, counts[prefix])
	}
	fmt.Println()

	// Per-journey completion counts against the denormalized counter
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("journey:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte("journey:")); it.ValidForPrefix([]byte("journey:")); it.Next() {
			key := string(it.Item().Key())
			if strings.Contains(key, "idx:") {
				continue
			}

			var journey domain.Journey
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &journey)
			})
			if err != nil {
				fmt.Printf("  %s: unreadable (%v)\n", key, err)
				continue
			}

			completions := 0
			cOpts := badger.DefaultIteratorOptions
			cOpts.Prefix = []byte("vc:" + journey.ID + ":")
			cOpts.PrefetchValues = false
			cIt := txn.NewIterator(cOpts)
			for cIt.Seek(cOpts.Prefix); cIt.ValidForPrefix(cOpts.Prefix); cIt.Next() {
				completions++
			}
			cIt.Close()

			drift := ""
			if journey.Stats.VersesCompleted != completions {
				drift = fmt.Sprintf("  DRIFT (counter %d)", journey.Stats.VersesCompleted)
			}
			fmt.Printf("journey %s %q: %d/%d verses%s\n",
				journey.ID, journey.Name, completions, journey.Stats.TotalVerses, drift)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Journey inspection failed: %v", err)
	}
}
