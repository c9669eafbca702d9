package registry

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liyu1981.xyz/device-gateway-service/pkg/auth"
	"liyu1981.xyz/device-gateway-service/pkg/common"
	"liyu1981.xyz/device-gateway-service/pkg/models"
)

func countDevices(t *testing.T, reg *Registry, deviceID string) int64 {
	t.Helper()
	var count int64
	err := reg.Db.Conn.Model(&models.Device{}).Where("device_id = ?", deviceID).Count(&count).Error
	require.NoError(t, err)
	return count
}

func countEdges(t *testing.T, reg *Registry, userID int64, deviceID uint) int64 {
	t.Helper()
	var count int64
	err := reg.Db.Conn.Model(&models.DeviceOwner{}).
		Where("user_id = ? AND device_id = ?", userID, deviceID).Count(&count).Error
	require.NoError(t, err)
	return count
}

func TestRegister_Idempotent(t *testing.T) {
	common.SetTestLoggerNop()

	reg := newTestRegistry(t)
	deviceID := uuid.NewString()
	token := mintToken(t, 1)

	input := &RegisterInput{
		DeviceID:        deviceID,
		DeviceSecretKey: "secret-one",
		MonitorItem:     "waterLevel",
	}

	for i := 0; i < 3; i++ {
		err := reg.Registrar.Register(token, input)
		assert.NoError(t, err)
	}

	assert.Equal(t, int64(1), countDevices(t, reg, deviceID))

	var device models.Device
	require.NoError(t, reg.Db.Conn.First(&device, "device_id = ?", deviceID).Error)
	assert.Equal(t, int64(1), countEdges(t, reg, 1, device.ID))
}

func TestRegister_TrustOnFirstUse(t *testing.T) {
	common.SetTestLoggerNop()

	reg := newTestRegistry(t)
	deviceID := uuid.NewString()
	token := mintToken(t, 2)

	// first registration binds whatever secret is presented
	err := reg.Registrar.Register(token, &RegisterInput{
		DeviceID:        deviceID,
		DeviceSecretKey: "first-secret",
		MonitorItem:     "waterLevel",
	})
	require.NoError(t, err)

	// a different secret for the same device id is rejected
	err = reg.Registrar.Register(token, &RegisterInput{
		DeviceID:        deviceID,
		DeviceSecretKey: "another-secret",
		MonitorItem:     "waterLevel",
	})
	assert.ErrorIs(t, err, ErrInvalidDeviceSecret)

	assert.Equal(t, int64(1), countDevices(t, reg, deviceID))
}

func TestRegister_CrossUserSharing(t *testing.T) {
	common.SetTestLoggerNop()

	reg := newTestRegistry(t)
	deviceID := uuid.NewString()

	err := reg.Registrar.Register(mintToken(t, 10), &RegisterInput{
		DeviceID:        deviceID,
		DeviceSecretKey: "shared-secret",
		MonitorItem:     "waterLevel",
	})
	require.NoError(t, err)

	err = reg.Registrar.Register(mintToken(t, 11), &RegisterInput{
		DeviceID:        deviceID,
		DeviceSecretKey: "shared-secret",
		MonitorItem:     "waterLevel",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), countDevices(t, reg, deviceID))

	var device models.Device
	require.NoError(t, reg.Db.Conn.First(&device, "device_id = ?", deviceID).Error)
	assert.Equal(t, int64(1), countEdges(t, reg, 10, device.ID))
	assert.Equal(t, int64(1), countEdges(t, reg, 11, device.ID))
}

func TestRegister_MissingCredential(t *testing.T) {
	common.SetTestLoggerNop()

	reg := newTestRegistry(t)
	deviceID := uuid.NewString()

	err := reg.Registrar.Register("", &RegisterInput{
		DeviceID:        deviceID,
		DeviceSecretKey: "secret",
		MonitorItem:     "waterLevel",
	})
	assert.ErrorIs(t, err, ErrMissingCredential)

	// authentication failed before any storage was touched
	assert.Equal(t, int64(0), countDevices(t, reg, deviceID))
}

func TestRegister_InvalidCredential(t *testing.T) {
	common.SetTestLoggerNop()

	reg := newTestRegistry(t)
	deviceID := uuid.NewString()

	err := reg.Registrar.Register("not-a-valid-token", &RegisterInput{
		DeviceID:        deviceID,
		DeviceSecretKey: "secret",
		MonitorItem:     "waterLevel",
	})
	assert.ErrorIs(t, err, ErrInvalidCredential)
	assert.Equal(t, int64(0), countDevices(t, reg, deviceID))
}

func TestRegister_OptionalFields(t *testing.T) {
	common.SetTestLoggerNop()

	reg := newTestRegistry(t)
	token := mintToken(t, 3)

	{
		// both coordinates present: stored
		deviceID := uuid.NewString()
		err := reg.Registrar.Register(token, &RegisterInput{
			DeviceID:        deviceID,
			DeviceSecretKey: "secret",
			MonitorItem:     "waterLevel",
			CustomName:      "pond sensor",
			Latitude:        "31.2304",
			Longitude:       "121.4737",
		})
		require.NoError(t, err)

		var device models.Device
		require.NoError(t, reg.Db.Conn.First(&device, "device_id = ?", deviceID).Error)
		require.NotNil(t, device.CustomName)
		assert.Equal(t, "pond sensor", *device.CustomName)
		require.NotNil(t, device.Latitude)
		assert.Equal(t, "31.2304", *device.Latitude)
		require.NotNil(t, device.Longitude)
		assert.Equal(t, "121.4737", *device.Longitude)
	}

	{
		// latitude alone is dropped
		deviceID := uuid.NewString()
		err := reg.Registrar.Register(token, &RegisterInput{
			DeviceID:        deviceID,
			DeviceSecretKey: "secret",
			MonitorItem:     "waterLevel",
			Latitude:        "31.2304",
		})
		require.NoError(t, err)

		var device models.Device
		require.NoError(t, reg.Db.Conn.First(&device, "device_id = ?", deviceID).Error)
		assert.Nil(t, device.CustomName)
		assert.Nil(t, device.Latitude)
		assert.Nil(t, device.Longitude)
	}
}

func TestRegister_ConcurrentFirstRegistration(t *testing.T) {
	common.SetTestLoggerNop()

	reg := newTestRegistry(t)
	deviceID := uuid.NewString()

	// one pooled connection: goroutines still interleave between their
	// lookup and insert steps, but sqlite never reports a table lock
	sqlDB, err := reg.Db.Conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	const callers = 2
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = reg.Registrar.Register(mintToken(t, int64(100+i)), &RegisterInput{
				DeviceID:        deviceID,
				DeviceSecretKey: "same-secret",
				MonitorItem:     "waterLevel",
			})
		}()
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "caller %d should observe success", i)
	}
	assert.Equal(t, int64(1), countDevices(t, reg, deviceID))
}

// raceHasher delegates to the real hasher, but on its first Hash call it
// inserts the device row itself, so the caller's insert is guaranteed to
// lose the first-registration race.
type raceHasher struct {
	auth.SecretHasher
	reg      *Registry
	deviceID string
	secret   string
	once     sync.Once
}

func (h *raceHasher) Hash(plaintext string) (string, error) {
	var err error
	h.once.Do(func() {
		var digest string
		digest, err = h.SecretHasher.Hash(h.secret)
		if err != nil {
			return
		}
		err = h.reg.Db.Conn.Create(&models.Device{
			DeviceID:    h.deviceID,
			SecretHash:  digest,
			MonitorItem: "waterLevel",
		}).Error
	})
	if err != nil {
		return "", err
	}
	return h.SecretHasher.Hash(plaintext)
}

func TestRegister_LostRaceRecoversByReRead(t *testing.T) {
	common.SetTestLoggerNop()

	reg := newTestRegistry(t)
	deviceID := uuid.NewString()

	reg.Hasher = &raceHasher{
		SecretHasher: auth.NewSecretHasher(),
		reg:          reg,
		deviceID:     deviceID,
		secret:       "same-secret",
	}

	err := reg.Registrar.Register(mintToken(t, 200), &RegisterInput{
		DeviceID:        deviceID,
		DeviceSecretKey: "same-secret",
		MonitorItem:     "waterLevel",
	})
	assert.NoError(t, err, "loser of the race should still observe success")
	assert.Equal(t, int64(1), countDevices(t, reg, deviceID))
}
