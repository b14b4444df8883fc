package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/api/dto"
)

// TestResult contains metrics for a single bid request
type TestResult struct {
	BidderID     string
	Amount       int64
	ResponseTime time.Duration
	StatusCode   int
	Kind         string
	Error        error
}

// TestStats contains aggregated test statistics
type TestStats struct {
	TotalRequests     int
	Accepted          int
	HighestAccepted   int64
	TotalTime         time.Duration
	TotalResponseTime time.Duration
	ResponseTimes     []time.Duration
	OutcomeCounts     map[string]int // kind or transport error -> count
	BidderStats       map[string]int
	Lock              sync.Mutex
}

func main() {
	concurrency := flag.Int("c", 10, "Number of concurrent bidders")
	totalRequests := flag.Int("n", 200, "Total number of bids to submit")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	starting := flag.Int64("start", 10000, "Starting bid of the test auction in cents")
	delayMs := flag.Int("delay", 0, "Delay between bids of one bidder in milliseconds")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	auctionID, err := createAuction(client, *baseURL, *starting)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create auction: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Racing %d bids from %d bidders on auction %s\n", *totalRequests, *concurrency, auctionID)

	stats := &TestStats{
		TotalRequests: *totalRequests,
		ResponseTimes: make([]time.Duration, 0, *totalRequests),
		OutcomeCounts: make(map[string]int),
		BidderStats:   make(map[string]int),
	}

	// Every bidder keeps raising from a shared, possibly stale view of the price
	var priceMu sync.Mutex
	observed := *starting

	jobs := make(chan int, *totalRequests)
	for i := 0; i < *totalRequests; i++ {
		jobs <- i
	}
	close(jobs)

	startTime := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(bidder string) {
			defer wg.Done()
			for range jobs {
				if *delayMs > 0 {
					time.Sleep(time.Duration(*delayMs) * time.Millisecond)
				}

				priceMu.Lock()
				amount := observed + 100 + int64(rand.Intn(5))*100
				priceMu.Unlock()

				result := placeBid(client, *baseURL, auctionID, bidder, amount)
				if result.StatusCode == http.StatusCreated {
					priceMu.Lock()
					if amount > observed {
						observed = amount
					}
					priceMu.Unlock()
				}
				record(stats, result)
			}
		}(fmt.Sprintf("load-bidder-%d", i))
	}
	wg.Wait()
	stats.TotalTime = time.Since(startTime)

	printResults(stats)

	if err := verify(client, *baseURL, auctionID, stats.HighestAccepted); err != nil {
		fmt.Printf("❌ LEDGER CHECK FAILED: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Ledger is consistent: bids strictly increase and the auction shows the highest accepted bid")
}

func createAuction(client *http.Client, baseURL string, starting int64) (string, error) {
	body, _ := json.Marshal(dto.CreateAuctionRequest{
		Category:               "blood",
		Description:            "load test",
		StartingBidAmountCents: starting,
	})
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/auctions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "load-donor")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("HTTP status code %d", resp.StatusCode)
	}
	var created dto.CreateAuctionResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", err
	}
	return created.AuctionID, nil
}

func placeBid(client *http.Client, baseURL, auctionID, bidder string, amount int64) TestResult {
	result := TestResult{BidderID: bidder, Amount: amount}

	body, _ := json.Marshal(dto.PlaceBidRequest{AmountCents: amount})
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/auctions/"+auctionID+"/bids", bytes.NewReader(body))
	if err != nil {
		result.Error = err
		return result
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", bidder)

	start := time.Now()
	resp, err := client.Do(req)
	result.ResponseTime = time.Since(start)
	if err != nil {
		result.Error = err
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	if resp.StatusCode >= 300 {
		var errBody dto.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil {
			result.Kind = errBody.Kind
		}
	}
	return result
}

func record(stats *TestStats, result TestResult) {
	stats.Lock.Lock()
	defer stats.Lock.Unlock()

	stats.BidderStats[result.BidderID]++
	stats.ResponseTimes = append(stats.ResponseTimes, result.ResponseTime)
	stats.TotalResponseTime += result.ResponseTime

	switch {
	case result.Error != nil:
		stats.OutcomeCounts["transport: "+result.Error.Error()]++
	case result.StatusCode == http.StatusCreated:
		stats.Accepted++
		stats.OutcomeCounts["Accepted"]++
		if result.Amount > stats.HighestAccepted {
			stats.HighestAccepted = result.Amount
		}
	case result.Kind != "":
		stats.OutcomeCounts[result.Kind]++
	default:
		stats.OutcomeCounts[fmt.Sprintf("HTTP %d", result.StatusCode)]++
	}
}

// verify checks that accepted bids, in placement order, strictly increase
func verify(client *http.Client, baseURL, auctionID string, highestAccepted int64) error {
	resp, err := client.Get(baseURL + "/api/v1/auctions/" + auctionID + "/bids?order=time")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var list dto.BidListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return err
	}

	var prev int64
	for _, b := range list.Bids {
		if b.AmountCents <= prev {
			return fmt.Errorf("bid %s (%d) does not exceed the previous bid (%d)", b.BidID, b.AmountCents, prev)
		}
		prev = b.AmountCents
	}

	resp2, err := client.Get(baseURL + "/api/v1/auctions/" + auctionID)
	if err != nil {
		return err
	}
	defer resp2.Body.Close()

	var auction dto.AuctionResponse
	if err := json.NewDecoder(resp2.Body).Decode(&auction); err != nil {
		return err
	}
	if highestAccepted > 0 && auction.CurrentHighestBidCents != highestAccepted {
		return fmt.Errorf("auction shows %d but the highest accepted bid was %d", auction.CurrentHighestBidCents, highestAccepted)
	}
	return nil
}

func printResults(stats *TestStats) {
	var avg, p50, p95, p99 time.Duration
	if n := len(stats.ResponseTimes); n > 0 {
		avg = stats.TotalResponseTime / time.Duration(n)
		sorted := make([]time.Duration, n)
		copy(sorted, stats.ResponseTimes)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		p50 = sorted[n*50/100]
		p95 = sorted[n*95/100]
		p99 = sorted[n*99/100]
	}

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Bids:          %d\n", stats.TotalRequests)
	fmt.Printf("Accepted Bids:       %d\n", stats.Accepted)
	fmt.Printf("Highest Accepted:    %d cents\n", stats.HighestAccepted)
	fmt.Printf("Total Test Time:     %.2f seconds\n", stats.TotalTime.Seconds())
	fmt.Printf("Throughput:          %.2f bids/s\n", float64(stats.TotalRequests)/stats.TotalTime.Seconds())

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("Average Response:    %v\n", avg)
	fmt.Printf("P50 Response:        %v\n", p50)
	fmt.Printf("P95 Response:        %v\n", p95)
	fmt.Printf("P99 Response:        %v\n", p99)

	fmt.Println("\n----------------- OUTCOMES -----------------")
	for outcome, count := range stats.OutcomeCounts {
		fmt.Printf("%-40s: %d (%.1f%%)\n", outcome, count, float64(count)/float64(stats.TotalRequests)*100)
	}
	fmt.Println("================================================")
}
