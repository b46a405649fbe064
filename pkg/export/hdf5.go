package export

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
	eventbuilder "github.com/next-exp/cebra_go/pkg"
)

const STRLEN = 20

const columnChunkSize = 32768

type ChannelMapHDF5 struct {
	board       int32
	channel     int32
	channelType [STRLEN]byte
}

func convertToHdf5String(s string) [STRLEN]byte {
	var byteArray [STRLEN]byte
	copy(byteArray[:], s)
	return byteArray
}

// HDF5Writer writes one extendible float64 dataset per column under
// /ChannelData and the channel map under /Sensors/ChannelMap.
type HDF5Writer struct {
	File            *hdf5.File
	Filename        string
	DataGroup       *hdf5.Group
	SensorsGroup    *hdf5.Group
	ChannelMapTable *hdf5.Dataset
	Columns         []*hdf5.Dataset
	ColumnNames     []string
	RowCounter      int
	compression     int
	closed          bool
}

func NewHDF5Writer(filename string, opts Options) (*HDF5Writer, error) {
	// Set string size for HDF5
	hdf5.SetStringLength(STRLEN)

	file, err := hdf5.CreateFile(filename, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &eventbuilder.ErrOpenFile{Filename: filename, Err: err}
	}
	writer := &HDF5Writer{
		File:        file,
		Filename:    filename,
		compression: opts.CompressionLevel,
	}
	writer.DataGroup, err = createGroup(file, "ChannelData")
	if err != nil {
		file.Close()
		return nil, err
	}
	writer.SensorsGroup, err = createGroup(file, "Sensors")
	if err != nil {
		writer.DataGroup.Close()
		file.Close()
		return nil, err
	}
	return writer, nil
}

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		return nil, &ErrCreateGroup{GroupName: groupName, Err: err}
	}
	return g, nil
}

func (w *HDF5Writer) createDataset(group *hdf5.Group, name string, dtype *hdf5.Datatype) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	if err := plist.SetChunk([]uint{columnChunkSize}); err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	if err := plist.SetDeflate(w.compression); err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

func (w *HDF5Writer) WriteChannelMap(entries []eventbuilder.ChannelMapEntry) error {
	if w.closed {
		return ErrWriterClosed
	}
	if w.ChannelMapTable != nil {
		return errors.New("channel map already written")
	}
	dtype, err := hdf5.NewDatatypeFromValue(ChannelMapHDF5{})
	if err != nil {
		return &ErrCreateTable{TableName: "ChannelMap", Err: err}
	}
	w.ChannelMapTable, err = w.createDataset(w.SensorsGroup, "ChannelMap", dtype)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	// The array MUST be allocated at creation, if not, HDF5 will panic
	// doing appends will not work
	rows := make([]ChannelMapHDF5, len(entries))
	for i, entry := range entries {
		rows[i] = ChannelMapHDF5{
			board:       int32(entry.Board),
			channel:     int32(entry.Channel),
			channelType: convertToHdf5String(entry.ChannelType.String()),
		}
	}
	return writeArrayToTable(w.ChannelMapTable, &rows, 0)
}

func (w *HDF5Writer) WriteColumns(columns []eventbuilder.Column) error {
	if w.closed {
		return ErrWriterClosed
	}
	rows, err := checkColumns(columns)
	if err != nil {
		return err
	}

	if w.Columns == nil {
		w.Columns = make([]*hdf5.Dataset, 0, len(columns))
		w.ColumnNames = make([]string, 0, len(columns))
		for _, column := range columns {
			dset, err := w.createDataset(w.DataGroup, column.Name, hdf5.T_NATIVE_DOUBLE)
			if err != nil {
				return err
			}
			w.Columns = append(w.Columns, dset)
			w.ColumnNames = append(w.ColumnNames, column.Name)
		}
	} else if err := sameNames(columns, w.ColumnNames); err != nil {
		return err
	}

	if rows == 0 {
		return nil
	}
	for i, column := range columns {
		values := column.Values
		if err := writeArrayToTable(w.Columns[i], &values, w.RowCounter); err != nil {
			return fmt.Errorf("error writing column %q: %w", column.Name, err)
		}
	}
	w.RowCounter += rows
	return nil
}

func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, rowsInFile int) error {
	length := uint(len(*data))
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()

	// extend
	start := uint(rowsInFile)
	newsize := []uint{start + length}
	if err := dataset.Resize(newsize); err != nil {
		return err
	}
	filespace := dataset.Space()
	defer filespace.Close()

	count := []uint{length}
	if err := filespace.SelectHyperslab([]uint{start}, nil, count, nil); err != nil {
		return err
	}
	return dataset.WriteSubset(data, dataspace, filespace)
}

func (w *HDF5Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	var errs []error
	for i, dset := range w.Columns {
		if err := dset.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing column %q: %w", w.ColumnNames[i], err))
		}
	}
	if w.ChannelMapTable != nil {
		if err := w.ChannelMapTable.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing channel map table: %w", err))
		}
	}
	if err := w.DataGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing channel data group: %w", err))
	}
	if err := w.SensorsGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing sensors group: %w", err))
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file: %w", err))
	}
	return errors.Join(errs...)
}
