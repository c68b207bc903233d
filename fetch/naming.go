package fetch

import "github.com/whisper-darkly/recfetch/camera"

// ValueAt returns the i-th element of a positionally aligned option list,
// broadcasting the last element to higher indexes so a single --username
// covers every host. An empty list yields the zero value.
func ValueAt[T any](list []T, i int) T {
	if len(list) == 0 {
		var zero T
		return zero
	}
	if i < len(list) {
		return list[i]
	}
	return list[len(list)-1]
}

// deriveName builds an output filename from the first and last record of a
// group. The shape is prefix_host_firstDate_firstStart[...]. With more
// than one record the last record's end time is appended, preceded by its
// date only when the group crosses midnight; a lone record just gets its
// own end time.
func deriveName(prefix, host, fileType string, codec camera.Codec,
	firstDate string, first camera.Record,
	lastDate string, last camera.Record, count int) string {

	name := ""
	if prefix != "" {
		name = prefix + "_"
	}
	name += host + "_" + firstDate + "_" + codec.StartTime(first.Name)

	if count > 1 {
		if lastDate != firstDate {
			name += "_" + lastDate
		}
		name += "_" + codec.EndTime(last.Name)
	} else {
		name += "_" + codec.EndTime(first.Name)
	}

	return name + "." + fileType
}
