package smk2

// sizetable maps a chain-length token (0..63) to the number of blocks it
// represents: 1..59 directly, then five large power-of-two jumps for long
// runs of identical classification.
var sizetable = [64]int{
	1, 2, 3, 4, 5, 6, 7, 8,
	9, 10, 11, 12, 13, 14, 15, 16,
	17, 18, 19, 20, 21, 22, 23, 24,
	25, 26, 27, 28, 29, 30, 31, 32,
	33, 34, 35, 36, 37, 38, 39, 40,
	41, 42, 43, 44, 45, 46, 47, 48,
	49, 50, 51, 52, 53, 54, 55, 56,
	57, 58, 59, 128, 256, 512, 1024, 2048,
}

// decomposeChainLength finds the minimal sequence of sizetable tokens that
// sums exactly to n, via the same dynamic program as encoder.cpp's
// get_sizes: dp[m] holds the fewest tokens to reach total m, lastSize[m]
// the token index used to reach it. The returned tokens apply in order
// (first token covers the first lastSize[total]-counted blocks, etc).
func decomposeChainLength(n int) ([]int, error) {
	if n == 0 {
		return nil, ErrInvalidChainLength
	}

	const unreachable = -1
	dp := make([]int, n+1)
	lastSize := make([]int, n+1)
	for i := 1; i <= n; i++ {
		dp[i] = unreachable
		lastSize[i] = -1
	}

	for tokenIndex, size := range sizetable {
		for m := size; m <= n; m++ {
			if dp[m-size] == unreachable {
				continue
			}
			if dp[m] == unreachable || dp[m-size]+1 < dp[m] {
				dp[m] = dp[m-size] + 1
				lastSize[m] = tokenIndex
			}
		}
	}

	if lastSize[n] == -1 {
		return nil, ErrInvalidChainLength
	}

	var tokens []int
	for m := n; m > 0; {
		token := lastSize[m]
		tokens = append(tokens, token)
		m -= sizetable[token]
	}
	return tokens, nil
}
