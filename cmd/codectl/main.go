// codectl lists or clears verification codes and cooldown windows in redis.
//
//	go run ./cmd/codectl -kind data -purpose reset
//	go run ./cmd/codectl -kind limit -del
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyRoot = "verify:email:"

func main() {
	var (
		addr    = flag.String("addr", "127.0.0.1:6379", "redis address host:port")
		pass    = flag.String("pass", "", "redis password")
		db      = flag.Int("db", 0, "redis db")
		kind    = flag.String("kind", "data", "data (codes), limit (cooldown windows) or fail (wrong-guess counters)")
		purpose = flag.String("purpose", "*", "register, reset or * (data only)")
		doDel   = flag.Bool("del", false, "delete matched keys")
		limit   = flag.Int64("count", 200, "SCAN COUNT hint")
		timeout = flag.Duration("timeout", 2*time.Second, "per-command timeout")
	)
	flag.Parse()

	pattern, err := patternFor(*kind, *purpose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     *addr,
		Password: *pass,
		DB:       *db,
	})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		fmt.Fprintf(os.Stderr, "redis ping failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Connected: addr=%s db=%d pattern=%q\n", *addr, *db, pattern)

	res, err := walk(rdb, pattern, *limit, *timeout, *doDel, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "SCAN error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case res.matched == 0:
		fmt.Println("No keys matched.")
	case *doDel:
		fmt.Printf("Deleted %d of %d keys.\n", res.deleted, res.matched)
		if res.deleted < res.matched {
			os.Exit(1)
		}
	}
}

type walkResult struct {
	matched int
	deleted int
}

// walk prints every key matching pattern and optionally deletes it.
// Only keys whose DEL succeeded count as deleted.
func walk(rdb *goredis.Client, pattern string, count int64, timeout time.Duration, del bool, out io.Writer) (walkResult, error) {
	var (
		res    walkResult
		cursor uint64
	)
	for {
		ctxScan, cancelScan := context.WithTimeout(context.Background(), timeout)
		keys, next, err := rdb.Scan(ctxScan, cursor, pattern, count).Result()
		cancelScan()
		if err != nil {
			return res, err
		}

		for _, k := range keys {
			res.matched++
			ctxCmd, cancelCmd := context.WithTimeout(context.Background(), timeout)
			val, _ := rdb.Get(ctxCmd, k).Result()
			ttl, _ := rdb.PTTL(ctxCmd, k).Result()
			cancelCmd()

			fmt.Fprintf(out, "%d) %s ttl=%s val=%q\n", res.matched, k, ttl.Round(time.Second), val)

			if !del {
				continue
			}
			ctxDel, cancelDel := context.WithTimeout(context.Background(), timeout)
			n, err := rdb.Del(ctxDel, k).Result()
			cancelDel()
			if err != nil {
				fmt.Fprintf(out, "   DEL error: %v\n", err)
				continue
			}
			res.deleted += int(n)
		}

		cursor = next
		if cursor == 0 {
			return res, nil
		}
	}
}

func patternFor(kind, purpose string) (string, error) {
	switch kind {
	case "data":
		switch purpose {
		case "*", "register", "reset":
			return keyRoot + "data:" + purpose + ":*", nil
		}
		return "", fmt.Errorf("unknown purpose %q", purpose)
	case "limit":
		return keyRoot + "limit:*", nil
	case "fail":
		return keyRoot + "fail:*", nil
	}
	return "", fmt.Errorf("unknown kind %q", kind)
}
