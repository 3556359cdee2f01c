package suggest

// damerauLevenshtein: optimal string alignment distance over runes.
func damerauLevenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	al, bl := len(ra), len(rb)

	dp := make([][]int, al+1)
	for i := range dp {
		dp[i] = make([]int, bl+1)
		dp[i][0] = i
	}
	for j := 0; j <= bl; j++ {
		dp[0][j] = j
	}

	for i := 1; i <= al; i++ {
		for j := 1; j <= bl; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			dp[i][j] = min(dp[i-1][j]+1, dp[i][j-1]+1, dp[i-1][j-1]+cost)

			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				dp[i][j] = min(dp[i][j], dp[i-2][j-2]+1)
			}
		}
	}
	return dp[al][bl]
}

// similarity: 1 - distance/maxLen, in [0..1]
func similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	n := max(len([]rune(a)), len([]rune(b)))
	return 1 - float64(damerauLevenshtein(a, b))/float64(n)
}
