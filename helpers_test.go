package appticket

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/connesc/appticket/internal/testissuer"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

var (
	signingKeyOnce sync.Once
	signingKey     *rsa.PrivateKey
	otherKey       *rsa.PrivateKey
)

// testSigningKeys returns two unrelated 1024 bits keys, generated once per run.
func testSigningKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	signingKeyOnce.Do(func() {
		var err error
		if signingKey, err = rsa.GenerateKey(rand.Reader, 1024); err != nil {
			panic(err)
		}
		if otherKey, err = rsa.GenerateKey(rand.Reader, 1024); err != nil {
			panic(err)
		}
	})
	return signingKey, otherKey
}

var (
	testIssueTime  = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	testExpireTime = testIssueTime.Add(21 * 24 * time.Hour)
)

// sampleTicket is the reference fixture: app 480 owned by 76561190000000000, with
// "hello" as user data.
func sampleTicket() *testissuer.Ticket {
	return &testissuer.Ticket{
		OwnershipVersion: 4,
		SteamID:          76561190000000000,
		AppID:            480,
		ExternalIP:       [4]byte{203, 0, 113, 7},
		InternalIP:       [4]byte{192, 168, 1, 20},
		Flags:            FlagLicenseTemporary,
		IssueTime:        uint32(testIssueTime.Unix()),
		ExpireTime:       uint32(testExpireTime.Unix()),
		Licenses:         []uint32{0, 17},
		DLC: []testissuer.DLC{
			{AppID: 1001, Licenses: []uint32{42}},
			{AppID: 1002},
		},
		AppDefinedValue: 0xCAFE,
		Extension:       [2]uint64{1, 2},
		UserData:        []byte("hello"),
		Trailer:         true,
	}
}

func issue(t *testing.T, fixture *testissuer.Ticket) []byte {
	t.Helper()
	ticket, err := fixture.Issue(testKey)
	require.NoError(t, err)
	return ticket
}

func sections(t *testing.T, fixture *testissuer.Ticket) *testissuer.Sections {
	t.Helper()
	s, err := fixture.Sections()
	require.NoError(t, err)
	return s
}

// plaintext returns the sections of a fixture the way Decrypt would.
func plaintext(t *testing.T, fixture *testissuer.Ticket) *Plaintext {
	t.Helper()
	s := sections(t, fixture)
	return &Plaintext{
		Header: Header{
			Version:      s.Version,
			CRC:          s.CRC(),
			UserDataLen:  s.UserDataLen,
			OwnershipLen: s.OwnershipLen,
		},
		Data: s.Data,
	}
}
