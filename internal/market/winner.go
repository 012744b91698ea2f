package market

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"
)

// shufflePrimes holds, per log2 bucket, a prime strictly larger than every
// player count in that bucket. Multiplying by a prime larger than m and
// reducing mod m is a bijection on [0, m), which gives a fixed,
// pseudo-random-looking permutation per pool size. This is a deterministic
// audit shuffle, not a cryptographic one.
var shufflePrimes = [16]uint64{
	3, 5, 11, 17, 37, 67, 131, 257,
	521, 1031, 2053, 4099, 8209, 16411, 32771, 65537,
}

// lo2 returns the log2 bucket of m, capped for m >= 65536.
func lo2(m uint64) int {
	i := 0
	for m > 1 {
		m >>= 1
		i++
	}
	if i >= len(shufflePrimes) {
		i = len(shufflePrimes) - 1
	}
	return i
}

// calcRet maps a 0-based player index to its permuted position in [0, m).
func calcRet(index, m uint64) uint64 {
	return index * shufflePrimes[lo2(m)] % m
}

// rollHash folds one bet into the pool's entropy accumulator:
// keccak256(now || height || last), little-endian, taking the first eight
// bytes of the digest. Weak entropy by construction; predictable by anyone
// who can observe block contents.
func rollHash(now, height, last uint64) uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:8], now)
	binary.LittleEndian.PutUint64(buf[8:16], height)
	binary.LittleEndian.PutUint64(buf[16:24], last)
	digest := crypto.Keccak256(buf[:])
	return binary.LittleEndian.Uint64(digest[:8])
}

// selectWinner reports whether the player with 1-based rank wins among n
// players when shareNum prizes are drawn with entropy seed. When n <=
// shareNum every entrant wins. Otherwise the permuted position must fall
// in the contiguous window [seed mod n, seed mod n + shareNum), wrapping
// past the end of the array.
func selectWinner(rank, n, shareNum, seed uint64) bool {
	if n <= shareNum {
		return true
	}

	pos := calcRet(rank-1, n)
	start := seed % n
	end := start + shareNum
	if end <= n {
		return pos >= start && pos < end
	}
	return pos >= start || pos < end-n
}
