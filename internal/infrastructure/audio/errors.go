package audio

import "errors"

var errDeviceNotReady = errors.New("audio device not ready")
