package dism

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
)

// The servicing tool prints its results as "Key : Value" lines, one block
// per image, with decoration around them. A block begins whenever its
// leading key repeats.

func parseMountedImages(output []byte) []MountedImage {
	var images []MountedImage
	for _, block := range parseBlocks(output, "Mount Dir") {
		index, _ := strconv.Atoi(block["Image Index"])
		images = append(images, MountedImage{
			MountDir:  block["Mount Dir"],
			ImagePath: block["Image File"],
			Index:     index,
			Status:    block["Status"],
		})
	}
	return images
}

func parseImageInfo(output []byte) []ImageInfo {
	var infos []ImageInfo
	for _, block := range parseBlocks(output, "Index") {
		index, err := strconv.Atoi(block["Index"])
		if err != nil {
			continue
		}
		infos = append(infos, ImageInfo{
			Index:       index,
			Name:        block["Name"],
			Description: block["Description"],
		})
	}
	return infos
}

// parseBlocks splits the tool output into key/value blocks. A new block
// starts at every occurrence of startKey; lines that do not look like
// "Key : Value" are decoration and ignored.
func parseBlocks(output []byte, startKey string) []map[string]string {
	var blocks []map[string]string
	var current map[string]string

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		key, value, ok := splitKeyValue(scanner.Text())
		if !ok {
			continue
		}
		if key == startKey {
			current = make(map[string]string)
			blocks = append(blocks, current)
		}
		if current != nil {
			current[key] = value
		}
	}
	return blocks
}

func splitKeyValue(line string) (string, string, bool) {
	key, value, found := strings.Cut(line, " : ")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}
