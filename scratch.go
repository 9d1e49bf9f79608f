package nufx

import "sync"

// scratch bundles the 4 KiB buffers a thread decompression needs: the LZW
// engine (with its trie arrays and code stack), its output buffer, and the
// assembled-block buffer passed to the sink. Bundling them behind one
// pooled pointer avoids allocating fresh 4 KiB arrays for every block of
// every thread decompressed.
type scratch struct {
	lzw      *lzwEngine
	lzwOut   [4096]byte
	blockBuf [4096]byte
}

var scratchPool = sync.Pool{
	New: func() any {
		return &scratch{lzw: newLZWEngine()}
	},
}

func acquireScratch() *scratch {
	return scratchPool.Get().(*scratch)
}

func releaseScratch(s *scratch) {
	s.lzw.reset()
	s.lzw.resetFix = false
	s.lzw.stack = s.lzw.stack[:0]
	scratchPool.Put(s)
}
