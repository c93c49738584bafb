package ffs

import (
	"fmt"

	"github.com/vk/dxecore/internal/guid"
)

// File system GUIDs.
var (
	FileSystem2 = guid.MustParse("8c8ce578-8a3d-4f1c-9935-896185c32dd3")
	FileSystem3 = guid.MustParse("5473c07a-3dcb-4dca-bd6f-1e9689e7349a")
)

// TianoCompress is the definition GUID standard compression sections are
// routed to.
var TianoCompress = guid.MustParse("a31280ad-481e-41b6-95e8-127f4c984779")

// FileType is the PI file type byte.
type FileType uint8

const (
	FileTypeRaw                 FileType = 0x01
	FileTypeFreeform            FileType = 0x02
	FileTypeSecurityCore        FileType = 0x03
	FileTypePeiCore             FileType = 0x04
	FileTypeDxeCore             FileType = 0x05
	FileTypePeim                FileType = 0x06
	FileTypeDriver              FileType = 0x07
	FileTypeCombinedPeimDriver  FileType = 0x08
	FileTypeApplication         FileType = 0x09
	FileTypeMm                  FileType = 0x0A
	FileTypeFirmwareVolumeImage FileType = 0x0B
	FileTypeCombinedMmDxe       FileType = 0x0C
	FileTypeMmCore              FileType = 0x0D
	FileTypeMmStandalone        FileType = 0x0E
	FileTypeMmCoreStandalone    FileType = 0x0F
	FileTypePad                 FileType = 0xF0
)

var fileTypeNames = map[FileType]string{
	FileTypeRaw:                 "RAW",
	FileTypeFreeform:            "FREEFORM",
	FileTypeSecurityCore:        "SECURITY_CORE",
	FileTypePeiCore:             "PEI_CORE",
	FileTypeDxeCore:             "DXE_CORE",
	FileTypePeim:                "PEIM",
	FileTypeDriver:              "DRIVER",
	FileTypeCombinedPeimDriver:  "COMBINED_PEIM_DRIVER",
	FileTypeApplication:         "APPLICATION",
	FileTypeMm:                  "MM",
	FileTypeFirmwareVolumeImage: "FIRMWARE_VOLUME_IMAGE",
	FileTypeCombinedMmDxe:       "COMBINED_MM_DXE",
	FileTypeMmCore:              "MM_CORE",
	FileTypeMmStandalone:        "MM_STANDALONE",
	FileTypeMmCoreStandalone:    "MM_CORE_STANDALONE",
	FileTypePad:                 "FFS_PAD",
}

func (t FileType) String() string {
	if n, ok := fileTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("FILE_TYPE(%#02x)", uint8(t))
}

// SectionType is the PI section type byte.
type SectionType uint8

const (
	SectionCompression         SectionType = 0x01
	SectionGuidDefined         SectionType = 0x02
	SectionDisposable          SectionType = 0x03
	SectionPE32                SectionType = 0x10
	SectionPIC                 SectionType = 0x11
	SectionTE                  SectionType = 0x12
	SectionDxeDepex            SectionType = 0x13
	SectionVersion             SectionType = 0x14
	SectionUserInterface       SectionType = 0x15
	SectionCompatibility16     SectionType = 0x16
	SectionFirmwareVolumeImage SectionType = 0x17
	SectionFreeformSubtypeGuid SectionType = 0x18
	SectionRaw                 SectionType = 0x19
	SectionPeiDepex            SectionType = 0x1B
	SectionMmDepex             SectionType = 0x1C
)

var sectionTypeNames = map[SectionType]string{
	SectionCompression:         "COMPRESSION",
	SectionGuidDefined:         "GUID_DEFINED",
	SectionDisposable:          "DISPOSABLE",
	SectionPE32:                "PE32",
	SectionPIC:                 "PIC",
	SectionTE:                  "TE",
	SectionDxeDepex:            "DXE_DEPEX",
	SectionVersion:             "VERSION",
	SectionUserInterface:       "USER_INTERFACE",
	SectionCompatibility16:     "COMPATIBILITY16",
	SectionFirmwareVolumeImage: "FIRMWARE_VOLUME_IMAGE",
	SectionFreeformSubtypeGuid: "FREEFORM_SUBTYPE_GUID",
	SectionRaw:                 "RAW",
	SectionPeiDepex:            "PEI_DEPEX",
	SectionMmDepex:             "MM_DEPEX",
}

func (t SectionType) String() string {
	if n, ok := sectionTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("SECTION_TYPE(%#02x)", uint8(t))
}

// IsEncapsulation reports whether sections of this type hold other sections.
func (t SectionType) IsEncapsulation() bool {
	return t == SectionCompression || t == SectionGuidDefined || t == SectionDisposable
}

// Compression section types.
const (
	NotCompressed      uint8 = 0x00
	StandardCompressed uint8 = 0x01
)

// GUID_DEFINED section attributes.
const (
	GuidProcessingRequired uint16 = 0x01
	GuidAuthStatusValid    uint16 = 0x02
)

// File attributes and states.
const (
	AttribLargeFile uint8 = 0x01
	AttribChecksum  uint8 = 0x40

	StateHeaderConstruction uint8 = 0x01
	StateHeaderValid        uint8 = 0x02
	StateDataValid          uint8 = 0x04
	StateMarkedForUpdate    uint8 = 0x08
	StateDeleted            uint8 = 0x10

	// FileChecksumUnused is the file checksum byte when AttribChecksum is
	// clear.
	FileChecksumUnused uint8 = 0xAA
)

// AttribErasePolarity is the volume attribute bit selecting 0xFF as the
// erased byte value.
const AttribErasePolarity uint32 = 0x800
