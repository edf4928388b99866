package kv

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

// BenchmarkSQLiteSet benchmarks durable writes of a collection-sized value.
func BenchmarkSQLiteSet(b *testing.B) {
	db, err := Open(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	value := fmt.Sprintf("%0*d", 64*1024, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := db.Set(ctx, "quotes", value); err != nil {
			b.Fatalf("Set failed: %v", err)
		}
	}
}

// BenchmarkSQLiteGet_Concurrent benchmarks concurrent readers.
func BenchmarkSQLiteGet_Concurrent(b *testing.B) {
	db, err := Open(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Set(ctx, "quotes", "[]"); err != nil {
		b.Fatalf("Set failed: %v", err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, _, err := db.Get(ctx, "quotes"); err != nil {
				b.Errorf("Get failed: %v", err)
				return
			}
		}
	})
}
