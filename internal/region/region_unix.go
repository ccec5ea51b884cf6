//go:build unix

package region

import "golang.org/x/sys/unix"

// mapAnon reserves size bytes of anonymous, private memory via mmap.
// Pages are not committed until first write, which is what gives the
// region manager its lazy page-in behaviour for free: the kernel does
// the deferring, the engine only has to avoid touching chunks it hasn't
// logically grown into yet.
func mapAnon(size int) ([]byte, func() error, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, nil, err
	}
	release := func() error {
		if data == nil {
			return nil
		}
		return unix.Munmap(data)
	}
	return data, release, nil
}
