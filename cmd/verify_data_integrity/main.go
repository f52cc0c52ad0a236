package main

import (
	"log"
	"os"

	"pagecraft-be/pkg/database"

	"github.com/joho/godotenv"
)

// Cross-checks the point ledger: batch bounds, transaction replay and the
// balance_after chain must all agree. Run against a live database.

type batchViolation struct {
	Id        string
	UserId    string
	Amount    int64
	Remaining int64
}

type replayMismatch struct {
	Id        string
	Amount    int64
	Remaining int64
	Granted   int64
	Spent     int64
}

type chainMismatch struct {
	Id           string
	Remaining    int64
	BalanceAfter int64
}

func main() {
	// 1. Load Environment
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to DB
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("🔍 LEDGER INTEGRITY CHECK")
	failed := false

	// 3. Batch bounds: 0 <= remaining <= amount, amount > 0
	var bounds []batchViolation
	db.Raw(`SELECT id, user_id, amount, remaining
	        FROM point_batches
	        WHERE remaining < 0 OR remaining > amount OR amount <= 0`).Scan(&bounds)
	if len(bounds) > 0 {
		failed = true
		log.Printf("❌ %d batches violate 0 <= remaining <= amount:", len(bounds))
		for _, b := range bounds {
			log.Printf("   batch=%s user=%s amount=%d remaining=%d", b.Id, b.UserId, b.Amount, b.Remaining)
		}
	} else {
		log.Println("✅ Batch bounds hold")
	}

	// 4. Replay: every batch has one income row equal to its amount, and
	//    amount minus the expense sum equals remaining
	var replays []replayMismatch
	db.Raw(`SELECT pb.id, pb.amount, pb.remaining,
	               COALESCE(SUM(CASE WHEN pt.type = 'income' THEN pt.amount END), 0)  AS granted,
	               COALESCE(SUM(CASE WHEN pt.type = 'expense' THEN pt.amount END), 0) AS spent
	        FROM point_batches pb
	        LEFT JOIN point_transactions pt ON pt.batch_id = pb.id
	        GROUP BY pb.id, pb.amount, pb.remaining
	        HAVING COALESCE(SUM(CASE WHEN pt.type = 'income' THEN pt.amount END), 0) <> pb.amount
	            OR pb.amount - COALESCE(SUM(CASE WHEN pt.type = 'expense' THEN pt.amount END), 0) <> pb.remaining`).Scan(&replays)
	if len(replays) > 0 {
		failed = true
		log.Printf("❌ %d batches diverge from their transaction history:", len(replays))
		for _, r := range replays {
			log.Printf("   batch=%s amount=%d granted=%d spent=%d remaining=%d (replay says %d)",
				r.Id, r.Amount, r.Granted, r.Spent, r.Remaining, r.Amount-r.Spent)
		}
	} else {
		log.Println("✅ Transaction replay matches stored remainders")
	}

	// 5. Chain: the latest balance_after per batch must equal remaining
	var chains []chainMismatch
	db.Raw(`SELECT pb.id, pb.remaining, last.balance_after
	        FROM point_batches pb
	        JOIN LATERAL (
	            SELECT balance_after FROM point_transactions
	            WHERE batch_id = pb.id
	            ORDER BY created_at DESC, id DESC LIMIT 1
	        ) last ON true
	        WHERE last.balance_after <> pb.remaining`).Scan(&chains)
	if len(chains) > 0 {
		failed = true
		log.Printf("❌ %d batches whose last balance_after disagrees with remaining:", len(chains))
		for _, c := range chains {
			log.Printf("   batch=%s remaining=%d last balance_after=%d", c.Id, c.Remaining, c.BalanceAfter)
		}
	} else {
		log.Println("✅ balance_after chain agrees with remainders")
	}

	// 6. Orphans: expense rows pointing at a missing batch
	var orphans int64
	db.Raw(`SELECT COUNT(*)
	        FROM point_transactions pt
	        LEFT JOIN point_batches pb ON pb.id = pt.batch_id
	        WHERE pt.batch_id IS NOT NULL AND pb.id IS NULL`).Scan(&orphans)
	if orphans > 0 {
		failed = true
		log.Printf("❌ %d transactions reference a batch that no longer exists", orphans)
	} else {
		log.Println("✅ No orphaned transactions")
	}

	if failed {
		log.Println("Result: ledger integrity check FAILED")
		os.Exit(1)
	}
	log.Println("✅ Result: ledger is internally consistent")
}
