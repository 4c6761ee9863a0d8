package batch

import "fmt"

// ShowHelp prints usage information for the batch command.
func ShowHelp() {
	fmt.Println("ratecard-batch - evaluate a file of sponsor offers against a ratecard service")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ratecard-batch [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -url string")
	fmt.Println("        Service base URL (default \"http://localhost:9080\")")
	fmt.Println("  -input string")
	fmt.Println("        JSON array of offer inputs (default \"offers.json\")")
	fmt.Println("  -output string")
	fmt.Println("        Report path (default ratecard_batch_<timestamp>.json)")
	fmt.Println("  -workers int")
	fmt.Printf("        Concurrent requests (default %d)\n", DefaultWorkers)
	fmt.Println("  -timeout duration")
	fmt.Printf("        Per-request timeout (default %s)\n", DefaultTimeout)
	fmt.Println("  -verbose")
	fmt.Println("        Log every evaluated offer")
	fmt.Println("  -help")
	fmt.Println("        Show this help message")
	fmt.Println()
	fmt.Println("Input format:")
	fmt.Println(`  [{"platform": "youtube", "niche": "technology", "average_views": 10000, "offer_price": 300}, ...]`)
}
