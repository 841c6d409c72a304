package memset

import "rvkern/kernel/mm/vmm"

// permissionFlags are the entry bits owned by MemAttrib.
const permissionFlags = vmm.FlagReadable | vmm.FlagWritable | vmm.FlagExecutable | vmm.FlagUser

// MemAttrib describes the access permissions of a memory area.
type MemAttrib struct {
	Readable   bool
	Writable   bool
	Executable bool
	User       bool
}

// Flags returns the page table flags granting these permissions.
func (a MemAttrib) Flags() vmm.PageTableEntryFlag {
	var flags vmm.PageTableEntryFlag
	if a.Readable {
		flags |= vmm.FlagReadable
	}
	if a.Writable {
		flags |= vmm.FlagWritable
	}
	if a.Executable {
		flags |= vmm.FlagExecutable
	}
	if a.User {
		flags |= vmm.FlagUser
	}
	return flags
}

// Apply rewrites the permission bits of a mapped entry. The entry is marked
// valid, accessed and dirty; its frame and remaining flags are preserved.
func (a MemAttrib) Apply(e vmm.PageEntry) {
	flags := e.Flags()&^permissionFlags | vmm.FlagValid | vmm.FlagAccessed | vmm.FlagDirty | a.Flags()
	e.Update(flags)
}

// String returns the permissions in "rwxu" notation, e.g. "r-x-".
func (a MemAttrib) String() string {
	perm := []byte("----")
	if a.Readable {
		perm[0] = 'r'
	}
	if a.Writable {
		perm[1] = 'w'
	}
	if a.Executable {
		perm[2] = 'x'
	}
	if a.User {
		perm[3] = 'u'
	}
	return string(perm)
}
