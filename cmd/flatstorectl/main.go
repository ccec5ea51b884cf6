// Command flatstorectl is a development aid for poking at a flat
// storage engine by hand: it runs scripted alloc/get/delete/stats/
// cachedump/evict operations against an in-process engine and prints
// the result. It is not part of the core allocator contract.
package main

func main() {
	execute()
}
