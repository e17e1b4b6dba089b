package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kryklin/darkstar/go/darkstar/pkg/envelope"
	dserrors "github.com/Kryklin/darkstar/go/darkstar/pkg/errors"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/format"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/prng"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/transforms"
)

const (
	scenarioPhrase   = "cat dog fish bird"
	scenarioPassword = "MySecre!Password123"
	testIterations   = 10
)

type fixture struct {
	Phrase     string `json:"phrase"`
	Password   string `json:"password"`
	Artifact   string `json:"artifact"`
	ReverseKey string `json:"reverseKey"`
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	var f fixture
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

// counterReader yields 0x00, 0x01, ... so the salt is 00..0f and the IV
// 10..1f, matching the fixtures.
func counterReader() *bytes.Reader {
	seq := make([]byte, 32)
	for i := range seq {
		seq[i] = byte(i)
	}
	return bytes.NewReader(seq)
}

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  "codec_test",
		Level: hclog.Trace,
	})
}

// fastCodec keeps every format rule but derives keys with few iterations.
func fastCodec(opts ...Option) *Codec {
	current := format.V2Format
	current.Iterations = testIterations
	legacy := format.V1Format
	legacy.Iterations = testIterations

	opts = append([]Option{WithLogger(testLogger()), withFormats(current, legacy)}, opts...)
	return New(opts...)
}

func TestEncryptGoldenV2(t *testing.T) {
	fx := loadFixture(t, "v2_scenario.json")
	c := New(WithLogger(testLogger()), WithRand(counterReader()))

	res, err := c.Encrypt(fx.Phrase, fx.Password)
	require.NoError(t, err)
	assert.Equal(t, fx.Artifact, res.Artifact)
	assert.Equal(t, fx.ReverseKey, res.ReverseKey)

	phrase, err := c.Decrypt(res.Artifact, res.ReverseKey, fx.Password)
	require.NoError(t, err)
	assert.Equal(t, scenarioPhrase, phrase)
}

func TestDecryptGoldenV1(t *testing.T) {
	fx := loadFixture(t, "v1_scenario.json")

	phrase, err := New().Decrypt(fx.Artifact, fx.ReverseKey, fx.Password)
	require.NoError(t, err)
	assert.Equal(t, fx.Phrase, phrase)

	res, err := New(WithRand(counterReader())).encryptLegacy(fx.Phrase, fx.Password)
	require.NoError(t, err)
	assert.Equal(t, fx.Artifact, res.Artifact)
	assert.Equal(t, fx.ReverseKey, res.ReverseKey)
}

func TestReverseKeyPlans(t *testing.T) {
	fx := loadFixture(t, "v2_scenario.json")

	plans, err := DecodeReverseKey(fx.ReverseKey)
	require.NoError(t, err)
	require.Len(t, plans, 4)
	assert.Equal(t, []int{5, 4, 7, 3, 11, 2, 6, 0, 1, 8, 9, 10}, plans[0].Ints())
	assert.Equal(t, []int{3, 1, 7, 10, 0, 4, 8, 9, 2, 5, 6, 11}, plans[3].Ints())
}

func TestRoundTrip(t *testing.T) {
	logger := testLogger()

	testCases := []struct {
		name   string
		phrase string
		legacy bool
	}{
		{"single word", "cat", true},
		{"scenario", scenarioPhrase, true},
		{"bip39", "abandon ability able about above absent absorb abstract absurd abuse access accident", false},
		{"unicode", "pässwörd 🔑 日本語", true},
		{"double space", "a  b", true},
		{"punctuation", "it's 100% fine, ok?", true},
		{"long word", strings.Repeat("z", 40), true},
		{"empty", "", true},
	}

	c := fastCodec()
	for _, tc := range testCases {
		t.Run(tc.name+"/v2", func(t *testing.T) {
			logger.Info("🧪 Round trip", "test", tc.name, "format", "v2")

			res, err := c.Encrypt(tc.phrase, scenarioPassword)
			require.NoError(t, err)

			got, err := c.Decrypt(res.Artifact, res.ReverseKey, scenarioPassword)
			require.NoError(t, err)
			assert.Equal(t, tc.phrase, got)
		})

		if !tc.legacy {
			continue
		}
		t.Run(tc.name+"/v1", func(t *testing.T) {
			logger.Info("🧪 Round trip", "test", tc.name, "format", "v1")

			res, err := c.encryptLegacy(tc.phrase, scenarioPassword)
			require.NoError(t, err)

			got, err := c.Decrypt(res.Artifact, res.ReverseKey, scenarioPassword)
			require.NoError(t, err)
			assert.Equal(t, tc.phrase, got)
		})
	}
}

// A V1 word block may itself contain the separator byte. Such artifacts
// split into the wrong number of words and are rejected.
func TestLegacySeparatorCollision(t *testing.T) {
	c := fastCodec()
	phrase := "abandon ability able about above absent absorb abstract absurd abuse access accident"

	res, err := c.encryptLegacy(phrase, scenarioPassword)
	require.NoError(t, err)

	_, err = c.Decrypt(res.Artifact, res.ReverseKey, scenarioPassword)
	assert.True(t, errors.Is(err, dserrors.ErrDataIntegrity), "got %v", err)

	// The same phrase under another password has no collision.
	res, err = c.encryptLegacy(phrase, "legacy-pass")
	require.NoError(t, err)
	got, err := c.Decrypt(res.Artifact, res.ReverseKey, "legacy-pass")
	require.NoError(t, err)
	assert.Equal(t, phrase, got)
}

func TestArtifactShape(t *testing.T) {
	c := fastCodec()

	res, err := c.Encrypt(scenarioPhrase, scenarioPassword)
	require.NoError(t, err)
	env := envelope.Parse(res.Artifact)
	assert.Equal(t, format.V2, env.Version)
	assert.True(t, strings.HasPrefix(res.Artifact, `{"v":2,"data":"`))

	legacy, err := c.encryptLegacy(scenarioPhrase, scenarioPassword)
	require.NoError(t, err)
	assert.Equal(t, format.V1, envelope.Parse(legacy.Artifact).Version)
	assert.False(t, strings.HasPrefix(legacy.Artifact, "{"))

	// The two formats choose different plans for the same input.
	assert.NotEqual(t, res.ReverseKey, legacy.ReverseKey)

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"encryptedData":`)
	assert.Contains(t, string(out), `"reverseKey":`)
}

func TestPlanDeterminism(t *testing.T) {
	c := fastCodec()

	a, err := c.Encrypt(scenarioPhrase, scenarioPassword)
	require.NoError(t, err)
	b, err := c.Encrypt(scenarioPhrase, scenarioPassword)
	require.NoError(t, err)

	assert.Equal(t, a.ReverseKey, b.ReverseKey)
	assert.NotEqual(t, a.Artifact, b.Artifact)
}

func TestWrongPassword(t *testing.T) {
	c := fastCodec()

	for _, legacy := range []bool{false, true} {
		var res *Result
		var err error
		if legacy {
			res, err = c.encryptLegacy(scenarioPhrase, scenarioPassword)
		} else {
			res, err = c.Encrypt(scenarioPhrase, scenarioPassword)
		}
		require.NoError(t, err)

		for _, pw := range []string{"wrong", "MySecre!Password124", ""} {
			got, err := c.Decrypt(res.Artifact, res.ReverseKey, pw)
			require.Error(t, err, "password %q legacy=%v returned %q", pw, legacy, got)
			assert.True(t,
				errors.Is(err, dserrors.ErrDecryptionFailed) || errors.Is(err, dserrors.ErrDataIntegrity),
				"unexpected error %v", err)
			assert.Empty(t, got)
		}
	}
}

func TestWordTooLarge(t *testing.T) {
	c := fastCodec()

	// A thousand-byte word grows past the 65535 byte frame limit.
	_, err := c.Encrypt("ok "+strings.Repeat("a", 1000), scenarioPassword)
	assert.True(t, errors.Is(err, dserrors.ErrWordTooLarge), "got %v", err)
}

func TestWordCountMismatch(t *testing.T) {
	c := fastCodec()

	res, err := c.Encrypt("one two three", scenarioPassword)
	require.NoError(t, err)
	plans, err := DecodeReverseKey(res.ReverseKey)
	require.NoError(t, err)

	short, err := encodeReverseKey(plans[:2])
	require.NoError(t, err)
	_, err = c.Decrypt(res.Artifact, short, scenarioPassword)
	assert.True(t, errors.Is(err, dserrors.ErrDataIntegrity), "got %v", err)

	long, err := encodeReverseKey(append(plans, plans[0]))
	require.NoError(t, err)
	_, err = c.Decrypt(res.Artifact, long, scenarioPassword)
	assert.True(t, errors.Is(err, dserrors.ErrDataIntegrity), "got %v", err)
}

func TestSwappedPlansNeverYieldPhrase(t *testing.T) {
	c := fastCodec()

	res, err := c.Encrypt("cat dog", scenarioPassword)
	require.NoError(t, err)
	plans, err := DecodeReverseKey(res.ReverseKey)
	require.NoError(t, err)

	swapped, err := encodeReverseKey([]transforms.Plan{plans[1], plans[0]})
	require.NoError(t, err)
	got, err := c.Decrypt(res.Artifact, swapped, scenarioPassword)
	if err == nil {
		assert.NotEqual(t, "cat dog", got)
	}
}

func TestPackedReverseKey(t *testing.T) {
	c := fastCodec()

	res, err := c.Encrypt(scenarioPhrase, scenarioPassword)
	require.NoError(t, err)
	plans, err := DecodeReverseKey(res.ReverseKey)
	require.NoError(t, err)

	packed, err := transforms.PackPlans(plans)
	require.NoError(t, err)
	require.Len(t, packed, 24)

	got, err := c.Decrypt(res.Artifact, base64.StdEncoding.EncodeToString(packed), scenarioPassword)
	require.NoError(t, err)
	assert.Equal(t, scenarioPhrase, got)
}

func TestDecodeReverseKeyErrors(t *testing.T) {
	b64 := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

	testCases := []struct {
		name string
		key  string
		want error
	}{
		{"not base64", "not base64!!", dserrors.ErrParse},
		{"empty", "", dserrors.ErrParse},
		{"empty list", b64("[]"), dserrors.ErrParse},
		{"wrong element type", b64(`[[1,"x"]]`), dserrors.ErrParse},
		{"flat list", b64("[1,2,3]"), dserrors.ErrParse},
		{"object", b64(`{"a":1}`), dserrors.ErrParse},
		{"id too large", b64("[[0,1,12]]"), dserrors.ErrInvalidReverseKey},
		{"negative id", b64("[[0,-1]]"), dserrors.ErrInvalidReverseKey},
		{"packed bad nibble", base64.StdEncoding.EncodeToString([]byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xac}), dserrors.ErrInvalidReverseKey},
		{"packed truncated", base64.StdEncoding.EncodeToString([]byte{0x01, 0x23, 0x45}), dserrors.ErrParse},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeReverseKey(tc.key)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)

			_, err = fastCodec().Decrypt(`{"v":2,"data":"x"}`, tc.key, scenarioPassword)
			assert.True(t, errors.Is(err, tc.want), "Decrypt got %v", err)
		})
	}
}

func TestDecryptBlobErrors(t *testing.T) {
	c := fastCodec()
	pw := []byte(scenarioPassword)
	ci := envelope.NewCipher(testIterations)
	emptyPlan := base64.StdEncoding.EncodeToString([]byte("[[]]"))

	seal := func(plaintext []byte) string {
		transit, err := ci.Seal(plaintext, pw)
		require.NoError(t, err)
		return transit
	}

	t.Run("v2 blob not base64", func(t *testing.T) {
		_, err := c.Decrypt(envelope.Wrap(seal([]byte("!!!!"))), emptyPlan, scenarioPassword)
		assert.True(t, errors.Is(err, dserrors.ErrDecryptionFailed), "got %v", err)
	})

	t.Run("v2 bad framing", func(t *testing.T) {
		framed := base64.StdEncoding.EncodeToString([]byte{0x00, 0x05, 'a'})
		_, err := c.Decrypt(envelope.Wrap(seal([]byte(framed))), emptyPlan, scenarioPassword)
		assert.True(t, errors.Is(err, dserrors.ErrDataIntegrity), "got %v", err)
	})

	t.Run("v2 word not utf8", func(t *testing.T) {
		framed := base64.StdEncoding.EncodeToString([]byte{0x00, 0x01, 0xff})
		_, err := c.Decrypt(envelope.Wrap(seal([]byte(framed))), emptyPlan, scenarioPassword)
		assert.True(t, errors.Is(err, dserrors.ErrDataIntegrity), "got %v", err)
	})

	t.Run("v2 raw word", func(t *testing.T) {
		framed := base64.StdEncoding.EncodeToString([]byte{0x00, 0x03, 'c', 'a', 't'})
		got, err := c.Decrypt(envelope.Wrap(seal([]byte(framed))), emptyPlan, scenarioPassword)
		require.NoError(t, err)
		assert.Equal(t, "cat", got)
	})

	t.Run("v1 blob not utf8", func(t *testing.T) {
		_, err := c.Decrypt(seal([]byte{0xff, 0xfe}), emptyPlan, scenarioPassword)
		assert.True(t, errors.Is(err, dserrors.ErrDecryptionFailed), "got %v", err)
	})

	t.Run("garbage artifact", func(t *testing.T) {
		_, err := c.Decrypt("hello", emptyPlan, scenarioPassword)
		assert.True(t, errors.Is(err, dserrors.ErrParse), "got %v", err)
	})
}

func TestWorkersDoNotChangeOutput(t *testing.T) {
	phrase := "abandon ability able about above absent absorb abstract absurd abuse access accident"

	serial, err := fastCodec(WithWorkers(1)).Encrypt(phrase, scenarioPassword)
	require.NoError(t, err)
	parallel, err := fastCodec(WithWorkers(8)).Encrypt(phrase, scenarioPassword)
	require.NoError(t, err)
	assert.Equal(t, serial.ReverseKey, parallel.ReverseKey)

	got, err := fastCodec(WithWorkers(1)).Decrypt(parallel.Artifact, parallel.ReverseKey, scenarioPassword)
	require.NoError(t, err)
	assert.Equal(t, phrase, got)
}

func TestConcurrentUse(t *testing.T) {
	c := fastCodec()
	var wg sync.WaitGroup
	errs := make(chan error, 8)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.Encrypt(scenarioPhrase, scenarioPassword)
			if err != nil {
				errs <- err
				return
			}
			got, err := c.Decrypt(res.Artifact, res.ReverseKey, scenarioPassword)
			if err != nil {
				errs <- err
				return
			}
			if got != scenarioPhrase {
				errs <- errors.New("phrase mismatch")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestFormatGenerators(t *testing.T) {
	// Guard against the fast formats drifting from the real ones.
	c := fastCodec()
	assert.Equal(t, prng.MulberryFactory("x").Next(), c.current.NewGenerator("x").Next())
	assert.Equal(t, prng.LegacyFactory("x").Next(), c.legacy.NewGenerator("x").Next())
}
