// Code generated by protoc-gen-go. DO NOT EDIT.
// versions:
// 	protoc-gen-go v1.36.10
// 	protoc        (unknown)
// source: directory/v1/directory.proto

package directoryv1

import (
	protoreflect "google.golang.org/protobuf/reflect/protoreflect"
	protoimpl "google.golang.org/protobuf/runtime/protoimpl"
	reflect "reflect"
	sync "sync"
	unsafe "unsafe"
)

const (
	// Verify that this generated code is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(20 - protoimpl.MinVersion)
	// Verify that runtime/protoimpl is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(protoimpl.MaxVersion - 20)
)

type AvailabilitySnapshotRequest struct {
	state      protoimpl.MessageState `protogen:"open.v1"`
	BusinessId string                 `protobuf:"bytes,1,opt,name=business_id,json=businessId,proto3" json:"business_id,omitempty"`
	ServiceId  string                 `protobuf:"bytes,2,opt,name=service_id,json=serviceId,proto3" json:"service_id,omitempty"`
	// Staff UUID, or "any" / empty for all active staff.
	StaffId string `protobuf:"bytes,3,opt,name=staff_id,json=staffId,proto3" json:"staff_id,omitempty"`
	// Business-local calendar date, YYYY-MM-DD.
	Date          string `protobuf:"bytes,4,opt,name=date,proto3" json:"date,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *AvailabilitySnapshotRequest) Reset() {
	*x = AvailabilitySnapshotRequest{}
	mi := &file_directory_v1_directory_proto_msgTypes[0]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *AvailabilitySnapshotRequest) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*AvailabilitySnapshotRequest) ProtoMessage() {}

func (x *AvailabilitySnapshotRequest) ProtoReflect() protoreflect.Message {
	mi := &file_directory_v1_directory_proto_msgTypes[0]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use AvailabilitySnapshotRequest.ProtoReflect.Descriptor instead.
func (*AvailabilitySnapshotRequest) Descriptor() ([]byte, []int) {
	return file_directory_v1_directory_proto_rawDescGZIP(), []int{0}
}

func (x *AvailabilitySnapshotRequest) GetBusinessId() string {
	if x != nil {
		return x.BusinessId
	}
	return ""
}

func (x *AvailabilitySnapshotRequest) GetServiceId() string {
	if x != nil {
		return x.ServiceId
	}
	return ""
}

func (x *AvailabilitySnapshotRequest) GetStaffId() string {
	if x != nil {
		return x.StaffId
	}
	return ""
}

func (x *AvailabilitySnapshotRequest) GetDate() string {
	if x != nil {
		return x.Date
	}
	return ""
}

type AvailabilitySnapshotResponse struct {
	state      protoimpl.MessageState `protogen:"open.v1"`
	BusinessId string                 `protobuf:"bytes,1,opt,name=business_id,json=businessId,proto3" json:"business_id,omitempty"`
	// IANA timezone name resolved for the business.
	Timezone        string `protobuf:"bytes,2,opt,name=timezone,proto3" json:"timezone,omitempty"`
	DurationMinutes int32  `protobuf:"varint,3,opt,name=duration_minutes,json=durationMinutes,proto3" json:"duration_minutes,omitempty"`
	DepositCents    int64  `protobuf:"varint,4,opt,name=deposit_cents,json=depositCents,proto3" json:"deposit_cents,omitempty"`
	Currency        string `protobuf:"bytes,5,opt,name=currency,proto3" json:"currency,omitempty"`
	// RFC 3339 UTC bounds of the requested business-local day.
	DayStartUtc   string                `protobuf:"bytes,6,opt,name=day_start_utc,json=dayStartUtc,proto3" json:"day_start_utc,omitempty"`
	DayEndUtc     string                `protobuf:"bytes,7,opt,name=day_end_utc,json=dayEndUtc,proto3" json:"day_end_utc,omitempty"`
	Windows       []*AvailabilityWindow `protobuf:"bytes,8,rep,name=windows,proto3" json:"windows,omitempty"`
	Blackouts     []*Blackout           `protobuf:"bytes,9,rep,name=blackouts,proto3" json:"blackouts,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *AvailabilitySnapshotResponse) Reset() {
	*x = AvailabilitySnapshotResponse{}
	mi := &file_directory_v1_directory_proto_msgTypes[1]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *AvailabilitySnapshotResponse) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*AvailabilitySnapshotResponse) ProtoMessage() {}

func (x *AvailabilitySnapshotResponse) ProtoReflect() protoreflect.Message {
	mi := &file_directory_v1_directory_proto_msgTypes[1]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use AvailabilitySnapshotResponse.ProtoReflect.Descriptor instead.
func (*AvailabilitySnapshotResponse) Descriptor() ([]byte, []int) {
	return file_directory_v1_directory_proto_rawDescGZIP(), []int{1}
}

func (x *AvailabilitySnapshotResponse) GetBusinessId() string {
	if x != nil {
		return x.BusinessId
	}
	return ""
}

func (x *AvailabilitySnapshotResponse) GetTimezone() string {
	if x != nil {
		return x.Timezone
	}
	return ""
}

func (x *AvailabilitySnapshotResponse) GetDurationMinutes() int32 {
	if x != nil {
		return x.DurationMinutes
	}
	return 0
}

func (x *AvailabilitySnapshotResponse) GetDepositCents() int64 {
	if x != nil {
		return x.DepositCents
	}
	return 0
}

func (x *AvailabilitySnapshotResponse) GetCurrency() string {
	if x != nil {
		return x.Currency
	}
	return ""
}

func (x *AvailabilitySnapshotResponse) GetDayStartUtc() string {
	if x != nil {
		return x.DayStartUtc
	}
	return ""
}

func (x *AvailabilitySnapshotResponse) GetDayEndUtc() string {
	if x != nil {
		return x.DayEndUtc
	}
	return ""
}

func (x *AvailabilitySnapshotResponse) GetWindows() []*AvailabilityWindow {
	if x != nil {
		return x.Windows
	}
	return nil
}

func (x *AvailabilitySnapshotResponse) GetBlackouts() []*Blackout {
	if x != nil {
		return x.Blackouts
	}
	return nil
}

type AvailabilityWindow struct {
	state   protoimpl.MessageState `protogen:"open.v1"`
	StaffId string                 `protobuf:"bytes,1,opt,name=staff_id,json=staffId,proto3" json:"staff_id,omitempty"`
	// 0 = Sunday .. 6 = Saturday.
	Weekday int32 `protobuf:"varint,2,opt,name=weekday,proto3" json:"weekday,omitempty"`
	// Minutes after local midnight, half-open [start, end).
	StartMinute   int32 `protobuf:"varint,3,opt,name=start_minute,json=startMinute,proto3" json:"start_minute,omitempty"`
	EndMinute     int32 `protobuf:"varint,4,opt,name=end_minute,json=endMinute,proto3" json:"end_minute,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *AvailabilityWindow) Reset() {
	*x = AvailabilityWindow{}
	mi := &file_directory_v1_directory_proto_msgTypes[2]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *AvailabilityWindow) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*AvailabilityWindow) ProtoMessage() {}

func (x *AvailabilityWindow) ProtoReflect() protoreflect.Message {
	mi := &file_directory_v1_directory_proto_msgTypes[2]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use AvailabilityWindow.ProtoReflect.Descriptor instead.
func (*AvailabilityWindow) Descriptor() ([]byte, []int) {
	return file_directory_v1_directory_proto_rawDescGZIP(), []int{2}
}

func (x *AvailabilityWindow) GetStaffId() string {
	if x != nil {
		return x.StaffId
	}
	return ""
}

func (x *AvailabilityWindow) GetWeekday() int32 {
	if x != nil {
		return x.Weekday
	}
	return 0
}

func (x *AvailabilityWindow) GetStartMinute() int32 {
	if x != nil {
		return x.StartMinute
	}
	return 0
}

func (x *AvailabilityWindow) GetEndMinute() int32 {
	if x != nil {
		return x.EndMinute
	}
	return 0
}

type Blackout struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	StaffId       string                 `protobuf:"bytes,1,opt,name=staff_id,json=staffId,proto3" json:"staff_id,omitempty"`
	StartUtc      string                 `protobuf:"bytes,2,opt,name=start_utc,json=startUtc,proto3" json:"start_utc,omitempty"`
	EndUtc        string                 `protobuf:"bytes,3,opt,name=end_utc,json=endUtc,proto3" json:"end_utc,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *Blackout) Reset() {
	*x = Blackout{}
	mi := &file_directory_v1_directory_proto_msgTypes[3]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *Blackout) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*Blackout) ProtoMessage() {}

func (x *Blackout) ProtoReflect() protoreflect.Message {
	mi := &file_directory_v1_directory_proto_msgTypes[3]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use Blackout.ProtoReflect.Descriptor instead.
func (*Blackout) Descriptor() ([]byte, []int) {
	return file_directory_v1_directory_proto_rawDescGZIP(), []int{3}
}

func (x *Blackout) GetStaffId() string {
	if x != nil {
		return x.StaffId
	}
	return ""
}

func (x *Blackout) GetStartUtc() string {
	if x != nil {
		return x.StartUtc
	}
	return ""
}

func (x *Blackout) GetEndUtc() string {
	if x != nil {
		return x.EndUtc
	}
	return ""
}

var File_directory_v1_directory_proto protoreflect.FileDescriptor

const file_directory_v1_directory_proto_rawDesc = "" +
	"\n" +
	"\x1cdirectory/v1/directory.proto\x12\fdirectory.v1\"\x8c\x01\n" +
	"\x1bAvailabilitySnapshotRequest\x12\x1f\n" +
	"\vbusiness_id\x18\x01 \x01(\tR\n" +
	"businessId\x12\x1d\n" +
	"\n" +
	"service_id\x18\x02 \x01(\tR\tserviceId\x12\x19\n" +
	"\bstaff_id\x18\x03 \x01(\tR\astaffId\x12\x12\n" +
	"\x04date\x18\x04 \x01(\tR\x04date\"\xfd\x02\n" +
	"\x1cAvailabilitySnapshotResponse\x12\x1f\n" +
	"\vbusiness_id\x18\x01 \x01(\tR\n" +
	"businessId\x12\x1a\n" +
	"\btimezone\x18\x02 \x01(\tR\btimezone\x12)\n" +
	"\x10duration_minutes\x18\x03 \x01(\x05R\x0fdurationMinutes\x12#\n" +
	"\rdeposit_cents\x18\x04 \x01(\x03R\fdepositCents\x12\x1a\n" +
	"\bcurrency\x18\x05 \x01(\tR\bcurrency\x12\"\n" +
	"\rday_start_utc\x18\x06 \x01(\tR\vdayStartUtc\x12\x1e\n" +
	"\vday_end_utc\x18\a \x01(\tR\tdayEndUtc\x12:\n" +
	"\awindows\x18\b \x03(\v2 .directory.v1.AvailabilityWindowR\awindows\x124\n" +
	"\tblackouts\x18\t \x03(\v2\x16.directory.v1.BlackoutR\tblackouts\"\x8b\x01\n" +
	"\x12AvailabilityWindow\x12\x19\n" +
	"\bstaff_id\x18\x01 \x01(\tR\astaffId\x12\x18\n" +
	"\aweekday\x18\x02 \x01(\x05R\aweekday\x12!\n" +
	"\fstart_minute\x18\x03 \x01(\x05R\vstartMinute\x12\x1d\n" +
	"\n" +
	"end_minute\x18\x04 \x01(\x05R\tendMinute\"[\n" +
	"\bBlackout\x12\x19\n" +
	"\bstaff_id\x18\x01 \x01(\tR\astaffId\x12\x1b\n" +
	"\tstart_utc\x18\x02 \x01(\tR\bstartUtc\x12\x17\n" +
	"\aend_utc\x18\x03 \x01(\tR\x06endUtc2\x84\x01\n" +
	"\x10DirectoryService\x12p\n" +
	"\x17GetAvailabilitySnapshot\x12).directory.v1.AvailabilitySnapshotRequest\x1a*.directory.v1.AvailabilitySnapshotResponseB@Z>github.com/bookora/bookora/protos/gen/directory/v1;directoryv1b\x06proto3"

var (
	file_directory_v1_directory_proto_rawDescOnce sync.Once
	file_directory_v1_directory_proto_rawDescData []byte
)

func file_directory_v1_directory_proto_rawDescGZIP() []byte {
	file_directory_v1_directory_proto_rawDescOnce.Do(func() {
		file_directory_v1_directory_proto_rawDescData = protoimpl.X.CompressGZIP(unsafe.Slice(unsafe.StringData(file_directory_v1_directory_proto_rawDesc), len(file_directory_v1_directory_proto_rawDesc)))
	})
	return file_directory_v1_directory_proto_rawDescData
}

var file_directory_v1_directory_proto_msgTypes = make([]protoimpl.MessageInfo, 4)
var file_directory_v1_directory_proto_goTypes = []any{
	(*AvailabilitySnapshotRequest)(nil),  // 0: directory.v1.AvailabilitySnapshotRequest
	(*AvailabilitySnapshotResponse)(nil), // 1: directory.v1.AvailabilitySnapshotResponse
	(*AvailabilityWindow)(nil),           // 2: directory.v1.AvailabilityWindow
	(*Blackout)(nil),                     // 3: directory.v1.Blackout
}
var file_directory_v1_directory_proto_depIdxs = []int32{
	2, // 0: directory.v1.AvailabilitySnapshotResponse.windows:type_name -> directory.v1.AvailabilityWindow
	3, // 1: directory.v1.AvailabilitySnapshotResponse.blackouts:type_name -> directory.v1.Blackout
	0, // 2: directory.v1.DirectoryService.GetAvailabilitySnapshot:input_type -> directory.v1.AvailabilitySnapshotRequest
	1, // 3: directory.v1.DirectoryService.GetAvailabilitySnapshot:output_type -> directory.v1.AvailabilitySnapshotResponse
	3, // [3:4] is the sub-list for method output_type
	2, // [2:3] is the sub-list for method input_type
	2, // [2:2] is the sub-list for extension type_name
	2, // [2:2] is the sub-list for extension extendee
	0, // [0:2] is the sub-list for field type_name
}

func init() { file_directory_v1_directory_proto_init() }
func file_directory_v1_directory_proto_init() {
	if File_directory_v1_directory_proto != nil {
		return
	}
	type x struct{}
	out := protoimpl.TypeBuilder{
		File: protoimpl.DescBuilder{
			GoPackagePath: reflect.TypeOf(x{}).PkgPath(),
			RawDescriptor: unsafe.Slice(unsafe.StringData(file_directory_v1_directory_proto_rawDesc), len(file_directory_v1_directory_proto_rawDesc)),
			NumEnums:      0,
			NumMessages:   4,
			NumExtensions: 0,
			NumServices:   1,
		},
		GoTypes:           file_directory_v1_directory_proto_goTypes,
		DependencyIndexes: file_directory_v1_directory_proto_depIdxs,
		MessageInfos:      file_directory_v1_directory_proto_msgTypes,
	}.Build()
	File_directory_v1_directory_proto = out.File
	file_directory_v1_directory_proto_goTypes = nil
	file_directory_v1_directory_proto_depIdxs = nil
}
