package thread

import (
	"unsafe"

	"rvkern/kernel/kfmt"
)

// pingPongRounds is the number of round trips made by the ping-pong test.
const pingPongRounds = 5

// SelfTest switches between the boot thread and freshly created threads to
// check context fabrication and switching before the scheduler starts.
func SelfTest() {
	boot := BootThread()

	t := NewThread().Create(FuncPC(switchBack))
	t.SetArgs(threadPtr(boot), threadPtr(t))
	boot.Switch(t)
	kfmt.Printf("[thread] switched back from test thread\n")
	boot.Switch(t)
	kfmt.Printf("[thread] switched back from test thread\n")
	t.Destroy()

	ping := NewThread().Create(FuncPC(pingPong))
	ping.SetArgs(threadPtr(boot), threadPtr(ping), pingPongRounds)
	for i := 0; i < pingPongRounds; i++ {
		boot.Switch(ping)
		kfmt.Printf("pong%d ", i)
	}
	kfmt.Printf("\n")
	ping.Destroy()

	kfmt.Printf("[thread] switch back-and-forth test passed\n")
}

func threadPtr(t *Thread) uintptr {
	return uintptr(unsafe.Pointer(t))
}

func switchBack(boot, self *Thread) {
	kfmt.Printf("[thread] test thread started\n")
	self.Switch(boot)
	kfmt.Printf("[thread] test thread resumed\n")
	self.Switch(boot)
}

func pingPong(boot, self *Thread, rounds uintptr) {
	for i := uintptr(0); i < rounds; i++ {
		kfmt.Printf("ping%d ", uint64(i))
		self.Switch(boot)
	}
}
