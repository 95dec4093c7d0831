//go:build linux

package watcher

import (
	"bufio"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// Superblock magic numbers from linux/magic.h.
const (
	nfsMagic  = 0x6969
	smbMagic  = 0x517B
	cifsMagic = 0xFF534D42
	smb2Magic = 0xFE534D42
	fuseMagic = 0x65735546
)

func statFilesystemType(path string) FilesystemType {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSTypeUnknown
	}
	switch uint32(st.Type) {
	case nfsMagic:
		return FSTypeNFS
	case smbMagic, cifsMagic, smb2Magic:
		return FSTypeSMB
	case fuseMagic:
		if mountType(path) == "fuse.sshfs" {
			return FSTypeSSHFS
		}
		return FSTypeFUSE
	default:
		return FSTypeLocal
	}
}

// mountType returns the fstype column of the longest mount point that
// contains path.
func mountType(path string) string {
	f, err := os.Open("/proc/self/mounts")
	if err != nil {
		return ""
	}
	defer f.Close()

	var best, fstype string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		mnt := fields[1]
		if !strings.HasPrefix(path, mnt) || len(mnt) <= len(best) {
			continue
		}
		if mnt != "/" && len(path) > len(mnt) && path[len(mnt)] != '/' {
			continue
		}
		best, fstype = mnt, fields[2]
	}
	return fstype
}
